// Package loader reads snapshots from disk.
//
// A snapshot is either a single JSON or YAML file in the codec layout, or a
// directory:
//
//	<dir>/snapshot.yaml      optional, sets the snapshot name
//	<dir>/devices/*.yaml     one Configuration per file, hostname defaults to the file name
//	<dir>/layer1.yaml        optional list of cables
//	<dir>/vxlan.yaml         optional list of VXLAN links, overrides derived adjacency
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"l2domains/internal/codec"
	"l2domains/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	DevicesDir   = "devices"
	MetadataFile = "snapshot.yaml"
	Layer1File   = "layer1.yaml"
	VxlanFile    = "vxlan.yaml"
)

// MetadataYAML is the optional snapshot.yaml
type MetadataYAML struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Load reads a snapshot from a file or a directory
func Load(path string) (*domain.Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads a single-file snapshot, choosing the codec by extension
func LoadFile(path string) (*domain.Snapshot, error) {
	c, err := codec.ForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	s, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// LoadDir reads a snapshot directory
func LoadDir(dir string) (*domain.Snapshot, error) {
	var meta MetadataYAML
	if _, err := decodeOptional(filepath.Join(dir, MetadataFile), &meta); err != nil {
		return nil, err
	}
	name := meta.Name
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		name = filepath.Base(abs)
	}
	s := domain.NewSnapshot(name)

	devices, err := DeviceFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, path := range devices {
		c, err := loadDevice(path)
		if err != nil {
			return nil, err
		}
		if _, dup := s.Configurations[c.Hostname]; dup {
			return nil, fmt.Errorf("%s: duplicate device %q", path, c.Hostname)
		}
		s.AddConfiguration(c)
	}

	var cables []codec.Cable
	if _, err := decodeOptional(filepath.Join(dir, Layer1File), &cables); err != nil {
		return nil, err
	}
	if s.Layer1, err = codec.CablesToEdges(cables); err != nil {
		return nil, fmt.Errorf("%s: %w", Layer1File, err)
	}

	var links []codec.VxlanLink
	found, err := decodeOptional(filepath.Join(dir, VxlanFile), &links)
	if err != nil {
		return nil, err
	}
	if found {
		edges, err := codec.LinksToEdges(links)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", VxlanFile, err)
		}
		s.Vxlan = edges
	}

	return s, nil
}

// DeviceFiles lists the device files of a snapshot directory in name order
func DeviceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, DevicesDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: snapshot has no %s directory", dir, DevicesDir)
		}
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsYAML(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, DevicesDir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// IsYAML reports whether a file name has a YAML extension
func IsYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func loadDevice(path string) (*domain.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var c domain.Configuration
	if err := decodeStrict(data, &c); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	if c.Hostname == "" {
		c.Hostname = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &c, nil
}

// decodeOptional decodes path into v, reporting false when the file is absent
func decodeOptional(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	if err := decodeStrict(data, v); err != nil {
		return true, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return true, nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
