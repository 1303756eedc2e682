package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for bundle loading.
var (
	ErrFileNotFound         = errors.New("bundle file not found")
	ErrEmptyFile            = errors.New("bundle file is empty")
	ErrInvalidBundle        = errors.New("invalid bundle")
	ErrUnsupportedVersion   = errors.New("unsupported bundle version")
	ErrUnknownContentFormat = errors.New("unknown content format")
)

// Format is a bundle file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath detects the format from the file extension (.yaml, .yml
// for YAML, otherwise JSON).
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads a bundle from a JSON or YAML file.
func LoadFile(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	b, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Source = path
	return b, nil
}

// Parse decodes and validates a bundle. The version is checked first, then
// the document is validated against the bundle schema and decoded.
func Parse(data []byte, format Format) (*Bundle, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidBundle, err)
	}

	var header struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if header.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, header.Version, SupportedVersion)
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return &b, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one
// validation and decoding path.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %v", ErrInvalidBundle, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: YAML document cannot be represented as JSON: %v", ErrInvalidBundle, err)
	}
	return out, nil
}

// Glob expands pattern into bundle file paths in lexical order. Patterns
// support ** for recursive directory matching. A pattern without glob
// metacharacters is returned as is, whether or not the file exists.
func Glob(pattern string) ([]string, error) {
	if !hasMeta(pattern) {
		return []string{pattern}, nil
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadGlob loads every bundle matching pattern, in lexical path order. A
// pattern without glob metacharacters is loaded as a single file.
func LoadGlob(pattern string) ([]*Bundle, error) {
	matches, err := Glob(pattern)
	if err != nil {
		return nil, err
	}

	bundles := make([]*Bundle, 0, len(matches))
	for _, match := range matches {
		b, err := LoadFile(match)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

// LoadAll loads bundles from each path or glob pattern in order.
func LoadAll(patterns ...string) ([]*Bundle, error) {
	var bundles []*Bundle
	for _, pattern := range patterns {
		loaded, err := LoadGlob(pattern)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, loaded...)
	}
	return bundles, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
