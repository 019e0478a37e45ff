package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultArtifactPath is where the analysis document is written by default.
const DefaultArtifactPath = "analysis.json"

// Artifact is the on-disk analysis document.
type Artifact struct {
	Status        Status   `json:"status"`
	Comment       []string `json:"comment"`
	PylintComment []string `json:"pylint_comment"`
}

// Artifact converts r into its on-disk form. Nil lists become empty arrays.
func (r Result) Artifact() Artifact {
	a := Artifact{
		Status:        r.Status,
		Comment:       r.Comments,
		PylintComment: r.StyleOutput,
	}
	if a.Comment == nil {
		a.Comment = []string{}
	}
	if a.PylintComment == nil {
		a.PylintComment = []string{}
	}
	return a
}

// WriteArtifact overwrites path with the JSON form of r.
func WriteArtifact(path string, r Result) error {
	data, err := json.Marshal(r.Artifact())
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write analysis: %w", err)
	}
	return nil
}
