package model

// Segment is one numbered ZIP part of a dataset
type Segment struct {
	Index int    // 1-based segment number
	URL   string // Remote URL
	Path  string // Local file path, set once downloaded
	Size  int64  // Downloaded bytes
}
