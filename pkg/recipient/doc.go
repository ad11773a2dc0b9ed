// Package recipient loads the addressees of a campaign.
//
// A [Record] is an ordered, immutable mapping of field names to string values
// that always carries a non-empty delivery address. Records are produced by a
// [Source]:
//
//   - [CSVSource] reads a table whose first row names the fields. Rows without
//     an address are skipped. Input may be in any WHATWG encoding.
//   - [SingleSource] wraps one explicitly supplied record. The record data is a
//     YAML or JSON mapping of scalars and is parsed, never evaluated.
//   - [QuerySource] runs a SQL query and turns every result row into a record.
//
// All sources materialise the full list in one Load call. Any failure to read
// or parse the backing data is reported as [ErrSource]; no partial list is
// returned.
//
// # Usage
//
//	src := recipient.NewCSVSource(func(ctx context.Context) (io.ReadCloser, error) {
//		return os.Open("contacts.csv")
//	}, recipient.WithEncoding("windows-1252"))
//
//	records, err := src.Load(ctx)
//	if err != nil {
//		return err
//	}
//	for _, rec := range records {
//		fmt.Println(rec.Address(), rec.Data())
//	}
package recipient
