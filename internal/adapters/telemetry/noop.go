package telemetry

// Noop discards every event. Used in tests and in the index CLI, where
// scraping metrics makes no sense.
type Noop struct{}

func (Noop) Record(string, map[string]string) {}
