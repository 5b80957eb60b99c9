package types

import "time"

// Bar is one aggregate bar in long format, the row shape the datasource
// expects in its input files and the download writers produce.
type Bar struct {
	Time   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
