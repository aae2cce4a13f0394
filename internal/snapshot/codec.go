package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a snapshot file encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const (
	snapshotDirMode  = 0o700
	snapshotFileMode = 0o600
	tempFilePattern  = ".zeitig-*.tmp"
)

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported snapshot extension %q (want .toml, .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Marshal encodes snap
func Marshal(snap *Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(snap)
	case FormatYAML:
		return yaml.Marshal(snap)
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// Unmarshal decodes data
func Unmarshal(data []byte, format Format) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, snap)
	case FormatYAML:
		err = yaml.Unmarshal(data, snap)
	case FormatJSON:
		err = json.Unmarshal(data, snap)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", format, err)
	}
	return snap, nil
}

// ReadFile loads a snapshot, choosing the decoder by extension
func ReadFile(path string) (*Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Unmarshal(data, format)
}

// WriteFile replaces path with snap. The file is written next to its
// destination first and renamed into place, so readers never see a partial file.
func WriteFile(path string, snap *Snapshot) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(snap, format)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), snapshotDirMode); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp snapshot file: %w", err)
	}
	if err := tempFile.Chmod(snapshotFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp snapshot file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp snapshot file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	cleanup = false
	return nil
}
