package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"l2domains/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a snapshot from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var doc snapshotDocument
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return doc.toSnapshot()
}

// ExportSnapshot writes a snapshot as JSON
func (c *JSONCodec) ExportSnapshot(s *domain.Snapshot, w io.Writer) error {
	return c.encode(newSnapshotDocument(s), w)
}

// Export writes an analysis as JSON
func (c *JSONCodec) Export(a *domain.Analysis, w io.Writer) error {
	return c.encode(newAnalysisDocument(a), w)
}

func (c *JSONCodec) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
