package recipient

import "errors"

var (
	// ErrSource indicates the recipient list could not be loaded.
	// Every error returned by Source.Load wraps it.
	ErrSource = errors.New("recipient: failed to load recipients")

	// ErrNoAddress indicates a record has no delivery address.
	ErrNoAddress = errors.New("recipient: record has no delivery address")

	// ErrAddressColumn indicates the table header lacks the address column.
	ErrAddressColumn = errors.New("recipient: address column not found in header")

	// ErrEmptyInput indicates the table has no header row.
	ErrEmptyInput = errors.New("recipient: input is empty")

	// ErrUnsupportedEncoding indicates an unknown text encoding label.
	ErrUnsupportedEncoding = errors.New("recipient: unsupported encoding")

	// ErrInvalidData indicates single-record data is not a mapping of scalars.
	ErrInvalidData = errors.New("recipient: record data must be a mapping of scalar values")
)
