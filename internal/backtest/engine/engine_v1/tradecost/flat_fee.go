package tradecost

// FlatFee charges a fixed amount for every asset that receives a strictly
// positive allocation, independent of the traded volume.
type FlatFee struct {
	amount float64
}

// NewFlatFee creates a flat per-trade fee model.
func NewFlatFee(amount float64) *FlatFee {
	return &FlatFee{amount: amount}
}

// Assess implements Model.
func (f *FlatFee) Assess(allocation float64) float64 {
	if allocation > 0 {
		return f.amount
	}

	return 0
}
