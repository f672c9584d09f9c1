package output

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"resizer/internal/processor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Manifest is the JSON report written next to a batch's outputs.
type Manifest struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	Options     processor.ResizeOptions `json:"options"`
	Archive     string                  `json:"archive,omitempty"`
	Succeeded   int                     `json:"succeeded"`
	Failed      int                     `json:"failed"`
	Outputs     []ManifestOutput        `json:"outputs"`
	Failures    []ManifestFailure       `json:"failures"`
}

type ManifestOutput struct {
	SourceID    string `json:"sourceId"`
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"contentType"`
	Bytes       int    `json:"bytes"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type ManifestFailure struct {
	SourceID string `json:"sourceId"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Detail   string `json:"detail"`
}

// NewManifest summarises result. paths, when non-nil, holds the written
// location of each success in order.
func NewManifest(result processor.BatchResult, opts processor.ResizeOptions, paths []string, at time.Time) Manifest {
	m := Manifest{
		GeneratedAt: at.UTC(),
		Options:     opts,
		Succeeded:   len(result.Successes),
		Failed:      len(result.Failures),
		Outputs:     make([]ManifestOutput, 0, len(result.Successes)),
		Failures:    make([]ManifestFailure, 0, len(result.Failures)),
	}
	for i, s := range result.Successes {
		out := ManifestOutput{
			SourceID:    s.SourceID,
			Name:        s.Name,
			ContentType: s.Format.ContentType(),
			Bytes:       s.ByteSize,
			Width:       s.Width,
			Height:      s.Height,
		}
		if i < len(paths) {
			out.Path = paths[i]
		}
		m.Outputs = append(m.Outputs, out)
	}
	for _, f := range result.Failures {
		m.Failures = append(m.Failures, ManifestFailure{
			SourceID: f.SourceID,
			Name:     f.OriginalName,
			Reason:   f.Reason.String(),
			Detail:   f.Detail,
		})
	}
	return m
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return WriteFile(path, append(data, '\n'))
}
