package recipient

import (
	"context"
	"strings"
)

// DefaultAddressField is the conventional name of the delivery-address field.
const DefaultAddressField = "Email"

// Source produces the recipients of a campaign.
type Source interface {
	// Load reads the whole recipient list.
	// Errors wrap ErrSource.
	Load(ctx context.Context) ([]Record, error)
}

// Field is a single name/value pair of a record.
type Field struct {
	Name  string
	Value string
}

// Record holds one addressee's template data.
// The zero value is an empty record without an address.
type Record struct {
	values  map[string]string
	address string
	keys    []string
}

// NewRecord builds a record from fields in order.
// A repeated name keeps its first position and its last value.
// The value of addressField, trimmed of surrounding whitespace, becomes the
// delivery address; ErrNoAddress is returned when it is missing or blank.
func NewRecord(addressField string, fields ...Field) (Record, error) {
	rec := Record{
		values: make(map[string]string, len(fields)),
		keys:   make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		if _, seen := rec.values[f.Name]; !seen {
			rec.keys = append(rec.keys, f.Name)
		}
		rec.values[f.Name] = f.Value
	}

	addr := strings.TrimSpace(rec.values[addressField])
	if addr == "" {
		return Record{}, ErrNoAddress
	}
	rec.address = addr
	rec.values[addressField] = addr

	return rec, nil
}

// Address returns the delivery address.
func (r Record) Address() string {
	return r.address
}

// Get returns the value of a field and whether the field exists.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Keys returns field names in source order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Data returns a fresh copy of the fields for template binding.
// Mutating the returned map does not affect the record.
func (r Record) Data() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
