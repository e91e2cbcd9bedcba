package lighting

import (
	"fmt"
	"io"
	"strings"
)

// Model selects a lighting implementation.
type Model string

const (
	ModelFFP      Model = "ffp"
	ModelPerPixel Model = "per_pixel"
)

// Models lists the supported lighting models.
var Models = []Model{ModelFFP, ModelPerPixel}

// DirectiveName is the material property selecting the lighting model.
const DirectiveName = "lighting_stage"

// directiveIndent is the nesting depth of the directive inside a pass block.
const directiveIndent = 4

// ParseModel parses a lighting_stage value.
func ParseModel(s string) (Model, error) {
	switch m := Model(s); m {
	case ModelFFP, ModelPerPixel:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// New creates an empty lighting model.
func New(m Model) (Lighting, error) {
	switch m {
	case ModelFFP:
		return NewFFP(), nil
	case ModelPerPixel:
		return NewPerPixel(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, string(m))
}

// Property is one parsed material script property.
type Property struct {
	Name   string
	Values []string
}

// ParseProperty splits a script line into a property name and its values.
// Double quotes around a value are removed.
func ParseProperty(line string) Property {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Property{}
	}
	prop := Property{Name: fields[0]}
	for _, f := range fields[1:] {
		prop.Values = append(prop.Values, strings.Trim(f, `"`))
	}
	return prop
}

// ParseDirective creates the lighting model named by a lighting_stage
// property. Other properties are not handled and yield (nil, nil).
func ParseDirective(prop Property) (Lighting, error) {
	if prop.Name != DirectiveName {
		return nil, nil
	}
	if len(prop.Values) != 1 {
		return nil, fmt.Errorf("%s expects one value, got %d: %w", DirectiveName, len(prop.Values), ErrUnknownModel)
	}
	m, err := ParseModel(prop.Values[0])
	if err != nil {
		return nil, err
	}
	return New(m)
}

// WriteDirective writes the lighting_stage property selecting l's model.
func WriteDirective(w io.Writer, l Lighting) error {
	_, err := fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("\t", directiveIndent), DirectiveName, l.Model())
	return err
}
