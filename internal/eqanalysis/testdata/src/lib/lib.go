package lib

//eq:equatable
type Money struct { // want Money:"equatable"
	Amount   int64
	Currency string
}

type Plain struct {
	Note string
}

// Entity opts in every struct embedding it.
//
//eq:equatable
type Entity struct { // want Entity:"equatable"
	ID string
}
