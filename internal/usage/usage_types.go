package usage

// TokenCounts holds input/output sums.
type TokenCounts struct {
	Input  int64
	Output int64
	Total  int64
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}

// Stats holds counters broken down by model and session.
type Stats struct {
	Calls     int
	Total     TokenCounts
	ByModel   map[string]TokenCounts
	BySession map[string]TokenCounts
}
