package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/store"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", ignoring case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apperr.Formatf("unknown document format %q", s)
}

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode renders doc in the given format.
func Encode(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, apperr.Formatf("unknown document format %q", format)
}

type decodeOptions struct {
	passphrase string
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

// WithPassphrase unlocks sealed documents.
func WithPassphrase(passphrase string) DecodeOption {
	return func(o *decodeOptions) { o.passphrase = passphrase }
}

// Decode unmarshals data into a generic tree for ParseDocument. Sealed
// envelopes are detected and opened first; their inner format wins over
// the format argument.
func Decode(data []byte, format Format, opts ...DecodeOption) (any, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if IsSealed(data) {
		plain, inner, err := Open(data, o.passphrase)
		if err != nil {
			return nil, err
		}
		data, format = plain, inner
	}

	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, apperr.Formatf("decode yaml: %v", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, apperr.Formatf("decode json: %v", err)
		}
	default:
		return nil, apperr.Formatf("unknown document format %q", format)
	}
	return raw, nil
}

// Load decodes and validates data in one step.
func Load(data []byte, format Format, opts ...DecodeOption) (Document, error) {
	raw, err := Decode(data, format, opts...)
	if err != nil {
		return Document{}, err
	}
	return ParseDocument(raw)
}

// ImportBytes decodes data and imports it into st.
func ImportBytes(st *store.Store, data []byte, format Format, opts ...DecodeOption) (store.Snapshot, error) {
	raw, err := Decode(data, format, opts...)
	if err != nil {
		return store.Snapshot{}, err
	}
	return Import(st, raw)
}
