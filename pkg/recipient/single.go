package recipient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SingleSource yields exactly one record built from explicit input.
type SingleSource struct {
	data         string
	address      string
	addressField string
}

// NewSingleSource creates a source for one recipient.
//
// data is a YAML or JSON mapping of scalar values (for example
// `{"Name": "Ada", "Plan": "pro"}` or `Name: Ada`); it may be empty.
// address, when set, overrides any address found in data and is stored under
// addressField so templates can reference it by its conventional name.
func NewSingleSource(data, address, addressField string) *SingleSource {
	if addressField == "" {
		addressField = DefaultAddressField
	}
	return &SingleSource{
		data:         data,
		address:      address,
		addressField: addressField,
	}
}

// Load parses the record data and returns a one-element list.
func (s *SingleSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrSource, err)
	}

	fields, err := parseScalarMapping(s.data)
	if err != nil {
		return nil, errors.Join(ErrSource, err)
	}

	if addr := strings.TrimSpace(s.address); addr != "" {
		fields = append(fields, Field{Name: s.addressField, Value: addr})
	}

	rec, err := NewRecord(s.addressField, fields...)
	if err != nil {
		return nil, errors.Join(ErrSource, err)
	}
	return []Record{rec}, nil
}

// parseScalarMapping decodes a flat mapping without resolving scalars to Go
// types, so values keep their literal spelling ("007" stays "007").
func parseScalarMapping(data string) ([]Field, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrInvalidData
	}

	fields := make([]Field, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind == yaml.AliasNode {
			val = val.Alias
		}
		if key.Kind != yaml.ScalarNode || val == nil || val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: field %q", ErrInvalidData, key.Value)
		}

		v := val.Value
		if val.Tag == "!!null" {
			v = ""
		}
		fields = append(fields, Field{Name: key.Value, Value: v})
	}

	return fields, nil
}
