package domain

// Counter names a per-song usage counter.
type Counter string

const (
	CounterPlays     Counter = "plays"
	CounterDownloads Counter = "downloads"
)

func (c Counter) Valid() bool {
	return c == CounterPlays || c == CounterDownloads
}

// AggregateField returns the artist-aggregate column the counter cascades to.
func (c Counter) AggregateField() string {
	switch c {
	case CounterPlays:
		return "total_plays"
	case CounterDownloads:
		return "total_downloads"
	default:
		return ""
	}
}
