package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// Kind names one of the two input slots of a run.
type Kind string

const (
	KindPolicy  Kind = "policy"
	KindDataset Kind = "dataset"
)

// Candidate is a file offered for one of the input slots. Path is the local
// path it was read from, if any.
type Candidate struct {
	Name      string
	MediaType string
	Path      string
	Payload   []byte
}

var datasetMediaTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

// ValidateCandidate accepts or rejects a candidate for the given slot based
// on its declared media type (and, for datasets, its filename extension).
func ValidateCandidate(c Candidate, kind Kind) error {
	mt := baseMediaType(c.MediaType)

	switch kind {
	case KindPolicy:
		if mt != "application/pdf" {
			return &ValidationError{Kind: kind, Name: c.Name, MediaType: c.MediaType, Reason: "only PDF files accepted"}
		}
	case KindDataset:
		ext := strings.ToLower(filepath.Ext(c.Name))
		if !datasetMediaTypes[mt] && ext != ".csv" {
			return &ValidationError{Kind: kind, Name: c.Name, MediaType: c.MediaType, Reason: "only CSV files accepted"}
		}
	default:
		return &ValidationError{Kind: kind, Name: c.Name, MediaType: c.MediaType, Reason: "unknown input slot"}
	}
	return nil
}

func baseMediaType(declared string) string {
	if declared == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return mt
}
