package lookup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// FileFormat represents the place file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatYAML                // Hand-edited place list
	FormatMsgpack             // Binary snapshot written by SaveSnapshot
)

// ErrUnknownFormat is returned for files whose format can't be detected.
var ErrUnknownFormat = errors.New("unknown place file format")

// FormatInfo contains metadata about a place file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML place list",
		Extensions:  []string{".yaml", ".yml"},
		MinSize:     1,
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "MessagePack place snapshot",
		Extensions:  []string{".msgpack", ".bin"},
		MinSize:     2,
	},
}

// placeFile is the on-disk layout of both formats.
type placeFile struct {
	Version int     `yaml:"version" msgpack:"version"`
	Places  []Place `yaml:"places" msgpack:"places"`
}

const snapshotVersion = 1

// DetectFileFormat picks the format from the file extension.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// ValidateFileFormat checks that a file exists and is large enough for
// the expected format.
func ValidateFileFormat(filename string, expected FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	info, ok := supportedFormats[expected]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, expected)
	}
	if fileInfo.Size() < info.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), info.Description, info.MinSize)
	}
	return nil
}

// LoadFile reads a place list in either format.
func LoadFile(filename string) ([]Place, error) {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return nil, err
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var pf placeFile
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &pf)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &pf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	places := pf.Places[:0]
	for _, p := range pf.Places {
		if strings.TrimSpace(p.Name) == "" {
			log.Warnf("Skipping unnamed place in %s", filename)
			continue
		}
		places = append(places, p)
	}
	log.Debugf("Loaded %d places from %s", len(places), filename)
	return places, nil
}

// SaveSnapshot writes places as a MessagePack snapshot, creating missing
// parent directories.
func SaveSnapshot(filename string, places []Place) error {
	data, err := msgpack.Marshal(placeFile{Version: snapshotVersion, Places: places})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := utils.WriteFile(filename, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", filename, err)
	}
	log.Debugf("Wrote %d places to %s", len(places), filename)
	return nil
}
