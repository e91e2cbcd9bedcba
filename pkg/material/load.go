package material

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rtshader/pkg/light"
)

// Format identifies a material file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported material file extension %q", filepath.Ext(path))
	}
}

// Load reads a material from a YAML or TOML file.
func Load(path string) (*Material, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a material. Passes and preview lights are decoded on top of
// NewPass and light.New, so keys left out of the file keep their defaults.
func Parse(data []byte, format Format) (*Material, error) {
	m := &Material{}
	if err := unmarshal(data, format, m); err != nil {
		return nil, err
	}

	var doc struct {
		Passes []map[string]any `yaml:"passes" toml:"passes"`
		Lights []map[string]any `yaml:"lights" toml:"lights"`
	}
	if err := unmarshalLoose(data, format, &doc); err != nil {
		return nil, err
	}

	passes, err := decodeSeeded(doc.Passes, format, "pass", func() Pass { return NewPass("") })
	if err != nil {
		return nil, err
	}
	lights, err := decodeSeeded(doc.Lights, format, "light", func() light.Light { return light.New(light.Point) })
	if err != nil {
		return nil, err
	}
	m.Passes, m.Lights = passes, lights
	m.normalize()
	return m, nil
}

// decodeSeeded decodes each raw entry over a fresh seed value by re-encoding
// it with the same codec.
func decodeSeeded[T any](raw []map[string]any, format Format, what string, seed func() T) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]T, len(raw))
	for i, entry := range raw {
		data, err := marshal(entry, format)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", what, i, err)
		}
		out[i] = seed()
		if err := unmarshal(data, format, &out[i]); err != nil {
			return nil, fmt.Errorf("%s %d: %w", what, i, err)
		}
	}
	return out, nil
}

func unmarshal(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case FormatTOML:
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
	default:
		return fmt.Errorf("unknown material format %d", format)
	}
}

// unmarshalLoose decodes a subset of the document, ignoring other keys.
func unmarshalLoose(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		return toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unknown material format %d", format)
	}
}

func marshal(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatTOML:
		return toml.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown material format %d", format)
	}
}

// Marshal encodes a material.
func (m *Material) Marshal(format Format) ([]byte, error) {
	return marshal(m, format)
}
