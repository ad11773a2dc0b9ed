package recipient

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier runs a query. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// QuerySource loads recipients from the result set of a SQL query.
// Column names become field names.
type QuerySource struct {
	db           Querier
	query        string
	args         []any
	addressField string
}

// NewQuerySource creates a source that runs query against db.
func NewQuerySource(db Querier, addressField, query string, args ...any) *QuerySource {
	if addressField == "" {
		addressField = DefaultAddressField
	}
	return &QuerySource{
		db:           db,
		query:        query,
		args:         args,
		addressField: addressField,
	}
}

// Load runs the query and converts every row with an address into a record.
// NULL becomes an empty string.
func (s *QuerySource) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, s.query, s.args...)
	if err != nil {
		return nil, errors.Join(ErrSource, err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	found := false
	for i, d := range descs {
		columns[i] = d.Name
		if d.Name == s.addressField {
			found = true
		}
	}
	if !found {
		return nil, errors.Join(ErrSource, fmt.Errorf("%w: %q", ErrAddressColumn, s.addressField))
	}

	var records []Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Join(ErrSource, err)
		}

		fields := make([]Field, len(columns))
		for i, name := range columns {
			var v any
			if i < len(values) {
				v = values[i]
			}
			fields[i] = Field{Name: name, Value: stringify(v)}
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
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrSource, err)
	}

	return records, nil
}

// stringify renders a decoded column value as template text.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case [16]byte:
		// uuid columns decode to their raw bytes.
		return uuid.UUID(val).String()
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil || inner == nil {
			return ""
		}
		return stringify(inner)
	default:
		return fmt.Sprint(val)
	}
}
