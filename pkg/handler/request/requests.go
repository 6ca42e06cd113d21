package request

// Request bodies of the dereplication API.

// DereplicateRequest submits a run. Unset settings fall back to the server
// configuration.
type DereplicateRequest struct {
	Program                    string   `json:"program"`
	UseFullPercentIdentity     *bool    `json:"use_full_percent_identity,omitempty"`
	DistanceThreshold          *float64 `json:"distance_threshold,omitempty"`
	RepresentativeMethod       string   `json:"representative_method,omitempty"`
	DistanceDirection          string   `json:"distance_direction,omitempty"`
	MinFullPercentIdentity     *float64 `json:"min_full_percent_identity,omitempty"`
	MinAlignmentFraction       *float64 `json:"min_alignment_fraction,omitempty"`
	SignificantAlignmentLength *int64   `json:"significant_alignment_length,omitempty"`

	Matrices []MatrixField `json:"matrices"`
	Genomes  []GenomeField `json:"genomes,omitempty"`
}

// MatrixField is one report, e.g. percentage_identity, as a square table.
type MatrixField struct {
	Name       string      `json:"name"`
	Convention string      `json:"convention"` // "distance" (default) or "similarity"
	Names      []string    `json:"names"`
	Values     [][]float64 `json:"values"`
}

type GenomeField struct {
	Name              string   `json:"name"`
	PercentCompletion *float64 `json:"percent_completion,omitempty"`
	PercentRedundancy *float64 `json:"percent_redundancy,omitempty"`
	TotalLength       *int64   `json:"total_length,omitempty"`
}
