package db_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/pkg/db"
)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := db.Connect(context.Background(), db.Config{URL: "postgres://%zz"})
	require.ErrorIs(t, err, db.ErrFailedToParseDBConfig)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = db.Connect(context.Background(), db.Config{
		URL:           "postgres://user:pass@" + addr + "/app?connect_timeout=1",
		RetryAttempts: 2,
		RetryInterval: 10 * time.Millisecond,
	})
	require.ErrorIs(t, err, db.ErrFailedToOpenDBConnection)
}

func TestConnect_CancelledBetweenAttempts(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = db.Connect(ctx, db.Config{
		URL:           "postgres://user:pass@" + addr + "/app?connect_timeout=1",
		RetryAttempts: 5,
		RetryInterval: time.Hour,
	})
	require.ErrorIs(t, err, db.ErrFailedToOpenDBConnection)
}
