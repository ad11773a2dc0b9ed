// Package db connects to PostgreSQL for loading recipients with a query.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with startup retries and a
// read-only session default. The pool satisfies recipient.Querier.
//
// # Usage
//
//	pool, err := db.Connect(ctx, db.Config{
//		URL:           os.Getenv("PAPERCO_DB_URL"),
//		RetryAttempts: 3,
//		RetryInterval: 2 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	src := recipient.NewQuerySource(pool, "email",
//		"select email, first_name as \"Name\" from customers where plan = $1", "pro")
//
// # Errors
//
//   - ErrFailedToParseDBConfig: the URL could not be parsed
//   - ErrFailedToOpenDBConnection: every attempt failed; the last cause is joined
package db
