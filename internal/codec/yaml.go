package codec

import (
	"errors"
	"fmt"
	"io"

	"l2domains/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a snapshot from YAML. Unknown keys are rejected so that a
// misspelled setting does not silently change the analysis.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var doc snapshotDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return doc.toSnapshot()
}

// ExportSnapshot writes a snapshot as YAML
func (c *YAMLCodec) ExportSnapshot(s *domain.Snapshot, w io.Writer) error {
	return c.encode(newSnapshotDocument(s), w)
}

// Export writes an analysis as YAML
func (c *YAMLCodec) Export(a *domain.Analysis, w io.Writer) error {
	return c.encode(newAnalysisDocument(a), w)
}

func (c *YAMLCodec) encode(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
