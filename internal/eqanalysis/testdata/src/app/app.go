package app

import "lib"

type Invoice struct { // want Invoice:"equatable via lib.Entity"
	lib.Entity
	Total lib.Money
	Extra lib.Plain // want `Property 'Extra' of type 'Plain' in Equatable class 'Invoice' references a type that is not marked \[Equatable\]`
}

type Draft struct {
	Extra lib.Plain
}
