package qgate

// fixedSource replays a scripted sequence of draws, wrapping around.
type fixedSource struct {
	values []int
	next   int
}

func (f *fixedSource) IntN(n int) int {
	v := f.values[f.next%len(f.values)]
	f.next++

	return v % n
}

func testGridConfig() GridConfig {
	return GridConfig{
		Rows:              6,
		Cols:              6,
		Pitch:             10,
		MatchThreshold:    3,
		OscillationPeriod: 4,
	}
}
