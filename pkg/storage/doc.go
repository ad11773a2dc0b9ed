// Package storage opens the operator-supplied inputs of a run (recipient
// tables, templates, layouts) from local paths or S3-compatible object
// storage.
//
// # Basic Usage
//
//	store := storage.New(storage.Config{
//		Region:    "eu-central-1",
//		AccessKey: os.Getenv("PAPERCO_S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("PAPERCO_S3_SECRET_KEY"),
//	})
//
//	body, err := store.ReadAll(ctx, "s3://campaigns/spring/body.html")
//	table := recipient.NewCSVSource(store.Opener("./customers.csv"))
//
// Locations starting with s3:// are fetched with GetObject; anything else is
// a local file path. Set Endpoint and PathStyle for MinIO and other
// S3-compatible services. Without keys, requests are sent anonymously.
//
// # Errors
//
//   - ErrInvalidLocation: malformed s3:// location
//   - ErrNotFound: missing file, bucket or key
//   - ErrAccessDenied: permission denied locally or by S3
//   - ErrReadFailed: any other failure while reading
//   - ErrTooLarge: ReadAll exceeded Config.MaxReadSize
package storage
