package recipient

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Opener returns a fresh reader over the raw table bytes.
// The caller closes it.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// CSVSource loads recipients from a comma-separated table.
type CSVSource struct {
	open         Opener
	addressField string
	encoding     string
	comma        rune
}

// CSVOption configures a CSVSource.
type CSVOption func(*CSVSource)

// WithAddressField sets the column holding the delivery address.
// Defaults to DefaultAddressField.
func WithAddressField(name string) CSVOption {
	return func(s *CSVSource) {
		if name != "" {
			s.addressField = name
		}
	}
}

// WithEncoding sets the text encoding of the input by WHATWG label
// (e.g. "utf-8", "windows-1252", "utf-16le"). Defaults to UTF-8.
func WithEncoding(label string) CSVOption {
	return func(s *CSVSource) {
		if label != "" {
			s.encoding = label
		}
	}
}

// WithComma sets the field delimiter. Defaults to ','.
func WithComma(r rune) CSVOption {
	return func(s *CSVSource) {
		if r != 0 {
			s.comma = r
		}
	}
}

// NewCSVSource creates a table source reading from open.
func NewCSVSource(open Opener, opts ...CSVOption) *CSVSource {
	s := &CSVSource{
		open:         open,
		addressField: DefaultAddressField,
		encoding:     "utf-8",
		comma:        ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the table and returns one record per row that has an address.
// Short rows are padded with empty values, surplus cells are dropped.
func (s *CSVSource) Load(ctx context.Context) ([]Record, error) {
	enc, err := lookupEncoding(s.encoding)
	if err != nil {
		return nil, errors.Join(ErrSource, err)
	}

	rc, err := s.open(ctx)
	if err != nil {
		return nil, errors.Join(ErrSource, err)
	}
	defer rc.Close()

	// BOMOverride strips a byte order mark and honours the encoding it names.
	decoded := transform.NewReader(rc, unicode.BOMOverride(enc.NewDecoder()))

	r := csv.NewReader(decoded)
	r.Comma = s.comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrSource, ErrEmptyInput)
	}
	if err != nil {
		return nil, errors.Join(ErrSource, err)
	}
	if !slices.Contains(header, s.addressField) {
		return nil, errors.Join(ErrSource, fmt.Errorf("%w: %q", ErrAddressColumn, s.addressField))
	}

	var records []Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrSource, err)
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Join(ErrSource, err)
		}

		fields := make([]Field, len(header))
		for i, name := range header {
			var v string
			if i < len(row) {
				v = row[i]
			}
			fields[i] = Field{Name: name, Value: v}
		}

		rec, err := NewRecord(s.addressField, fields...)
		if errors.Is(err, ErrNoAddress) {
			continue
		}
		if err != nil {
			return nil, errors.Join(ErrSource, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
	}
	return enc, nil
}
