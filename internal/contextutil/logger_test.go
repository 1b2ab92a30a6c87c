package contextutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{name: "no logger falls back to default", ctx: context.Background(), want: slog.Default()},
		{name: "stored logger", ctx: WithLogger(context.Background(), custom), want: custom},
		{name: "wrong type ignored", ctx: context.WithValue(context.Background(), loggerKey, "nope"), want: slog.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("LoggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}
