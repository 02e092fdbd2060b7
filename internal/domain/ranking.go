package domain

// Unit is an input unit symbol and how many base units one of it equals
type Unit struct {
	Symbol       string  `json:"symbol"`
	FactorToBase float64 `json:"factorToBase"`
}

// OutputUnit is a display-only unit for presenting price per unit
type OutputUnit struct {
	Symbol         string  `json:"symbol"`
	FactorFromBase float64 `json:"factorFromBase"`
	Precision      int     `json:"precision"` // decimal places in the display string
}

// UnitPrice is a ranked product's price expressed in one output unit
type UnitPrice struct {
	Unit    string  `json:"unit"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

// RankedProduct is a validated row with its comparison price and display prices
type RankedProduct struct {
	Row              int         `json:"row"`
	Name             string      `json:"name"`
	Store            string      `json:"store,omitempty"`
	URL              string      `json:"url,omitempty"`
	Price            float64     `json:"price"`
	Quantity         float64     `json:"quantity"`
	Unit             string      `json:"unit"`
	DisplayPrice     string      `json:"displayPrice"`
	PricePerBaseUnit float64     `json:"pricePerBaseUnit"`
	UnitPrices       []UnitPrice `json:"unitPrices"`
	BestValue        bool        `json:"bestValue"`
}

// Evaluation is the outcome of ranking a session.
// A hard failure is reported as an error instead of an Evaluation.
type Evaluation struct {
	Family      MeasurementFamily `json:"unitType"`
	OutputUnits []OutputUnit      `json:"outputUnits"`
	Products    []RankedProduct   `json:"products"`
	RowErrors   []RowError        `json:"rowErrors"`
}

// Empty reports whether no row survived validation
func (e *Evaluation) Empty() bool {
	return len(e.Products) == 0
}

// Best returns the best-value product, if any
func (e *Evaluation) Best() (RankedProduct, bool) {
	if e.Empty() {
		return RankedProduct{}, false
	}
	return e.Products[0], true
}
