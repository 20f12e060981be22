package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_EmptyContext_ReturnsDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.Default(), From(context.Background()))
}

func TestIntoFrom_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := Into(context.Background(), l)
	require.Same(t, l, From(ctx))
}

func TestWith_AttachesAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := Into(context.Background(), l)
	ctx = With(ctx, slog.String("request_id", "r-1"))

	From(ctx).Info("ping")
	require.Contains(t, buf.String(), "request_id=r-1")
}
