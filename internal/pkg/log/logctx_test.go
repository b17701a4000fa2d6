package log

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому НЕ используют t.Parallel().

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrom_ReturnsDefault_WhenNoLoggerInContext(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoAndFrom_RoundTrip(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
}

func TestFrom_IgnoresNilLogger(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	var nilLogger *slog.Logger
	ctx := context.WithValue(context.Background(), loggerKey{}, nilLogger)
	require.Equal(t, def, From(ctx))
}

func TestInto_ShadowParentLogger(t *testing.T) {
	parentL, childL := newSilent(), newSilent()

	parent := Into(context.Background(), parentL)
	child := Into(parent, childL)

	require.Equal(t, childL, From(child))
	require.Equal(t, parentL, From(parent))
}

func TestRequestID(t *testing.T) {
	require.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "rid-1")
	require.Equal(t, "rid-1", RequestID(ctx))

	// логгер и request id не мешают друг другу.
	l := newSilent()
	ctx = Into(ctx, l)
	require.Equal(t, "rid-1", RequestID(ctx))
	require.Equal(t, l, From(ctx))
}
