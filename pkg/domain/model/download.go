package model

// DownloadResult is the outcome of segment discovery and download
type DownloadResult struct {
	Dataset        *Dataset
	DestinationDir string
	Segments       []*Segment
	Probed         int // Number of probed URLs, including the final negative one
}

// TotalSize returns the number of downloaded bytes over all segments
func (r *DownloadResult) TotalSize() int64 {
	var total int64
	for _, s := range r.Segments {
		total += s.Size
	}
	return total
}

// ExtractResult is the outcome of expanding every archive in a directory
type ExtractResult struct {
	Archives []string // Archive file names, in processing order
	Files    int      // Number of extracted file entries
	Size     int64    // Total uncompressed size in bytes
}

// MergeReport is the outcome of merging segment directories
type MergeReport struct {
	SegmentDirs    []string // Segment directories merged, in processing order
	SubCollections []string // Sub-collection names merged under the main directory
	Moved          int      // Files moved
	Overwritten    int      // Files that replaced an existing file
	Skipped        int      // Files left in place due to the skip policy
	Warnings       []string // Segment directories that could not be removed
}

// FetchRequest is the input of a full run
type FetchRequest struct {
	BaseURL        string
	DestinationDir string // Empty means <cwd>/<dataset name>
	SegregateDirs  bool   // Skip merging
}

// RunReport aggregates the result of every stage of a full run
type RunReport struct {
	Download *DownloadResult
	Extract  *ExtractResult
	Deleted  []string
	Merge    *MergeReport // nil when merging was skipped
}
