package codec

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"l2domains/internal/domain"
)

// Importer reads a snapshot from one of the supported formats
type Importer interface {
	Parse(r io.Reader) (*domain.Snapshot, error)
	Format() string
}

// Exporter writes snapshots and analysis results
type Exporter interface {
	ExportSnapshot(s *domain.Snapshot, w io.Writer) error
	Export(a *domain.Analysis, w io.Writer) error
	Format() string
}

// Codec both imports and exports one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name: json, yaml or yml
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// ForContentType returns the codec for an HTTP media type. An empty content
// type selects JSON.
func ForContentType(contentType string) (Codec, error) {
	if contentType == "" {
		return NewJSONCodec(), nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("bad content type %q: %w", contentType, err)
	}
	switch mediaType {
	case "application/json":
		return NewJSONCodec(), nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported content type %q", mediaType)
}
