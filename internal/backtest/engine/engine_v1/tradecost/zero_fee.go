package tradecost

// ZeroFee charges nothing. Useful for benchmarks and for isolating policy
// behavior from frictions in tests.
type ZeroFee struct{}

// NewZeroFee creates a zero-cost fee model.
func NewZeroFee() *ZeroFee {
	return &ZeroFee{}
}

// Assess implements Model.
func (z *ZeroFee) Assess(allocation float64) float64 {
	return 0
}
