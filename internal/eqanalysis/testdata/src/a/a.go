package a

//eq:equatable
type Order struct { // want Order:"equatable"
	Items []string // want `Collection field 'Items' in Equatable class 'Order' requires an equality attribute`

	Index map[string]int // want `Collection field 'Index' in Equatable class 'Order' requires an equality attribute`

	Buyer Customer // want `Property 'Buyer' of type 'Customer' in Equatable class 'Order' references a type that is not marked \[Equatable\]`

	//eq:unordered
	Lines []Customer // want `Collection property 'Lines' in Equatable class 'Order' has element type 'Customer' that is not marked \[Equatable\]`

	//eq:ordered
	Codes []int
	note  []string
}

type Customer struct {
	Name string
}
