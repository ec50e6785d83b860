package storer

// Record is one stored query/response pair returned by a nearest-neighbor
// query. Distance is the backend's similarity distance, smaller is closer.
type Record struct {
	Id       string
	Document string
	Metadata map[string]any
	Distance float64
}
