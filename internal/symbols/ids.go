package symbols

// TypeID identifies a type descriptor inside the graph arena.
type TypeID uint32

const (
	// NoTypeID marks the absence of a type reference.
	NoTypeID TypeID = 0
)

// IsValid reports whether the type ID refers to an allocated type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// DeclID identifies a declaration inside the graph arena.
type DeclID uint32

const (
	// NoDeclID marks the absence of a declaration; it terminates base chains.
	NoDeclID DeclID = 0
)

// IsValid reports whether the declaration ID refers to an allocated declaration.
func (id DeclID) IsValid() bool { return id != NoDeclID }

// PropID identifies a property inside the graph arena.
type PropID uint32

const (
	// NoPropID marks the absence of a property reference.
	NoPropID PropID = 0
)

// IsValid reports whether the property ID refers to an allocated property.
func (id PropID) IsValid() bool { return id != NoPropID }
