package shop

import (
	"time"

	"github.com/google/uuid"

	"eqlint/internal/gosrc/testdata/shop/catalog"
)

// Status is an enum-like string type.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

//eq:equatable
type Product struct {
	ID    uuid.UUID
	Name  string
	Added time.Time
}

type Customer struct {
	Name string
}

//eq:equatable
type Order struct {
	ID     uuid.UUID
	Status Status
	Placed time.Time
	Wait   time.Duration

	//eq:ordered
	Products []Product
	Buyer    Customer
	Notes    []string
	history  []string

	Price catalog.Price
	Label catalog.Label
	//eq:set
	Skus map[catalog.Sku]bool
}
