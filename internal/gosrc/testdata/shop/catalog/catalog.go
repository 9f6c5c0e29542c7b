package catalog

//eq:equatable
type Price struct {
	Amount   int64
	Currency string
}

type (
	// Label is not opted in.
	Label struct {
		Text string
	}

	//eq:equatable
	Sku struct {
		Code string
	}
)
