package platform_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorlepa/splitroute/internal/platform"
)

func TestElevate(t *testing.T) {
	name, args := platform.Elevate("sudo", "ip", "route", "add", "1.2.3.4/32")
	require.Equal(t, "sudo", name)
	require.Equal(t, []string{"ip", "route", "add", "1.2.3.4/32"}, args)

	name, args = platform.Elevate("", "ip", "route")
	require.Equal(t, "ip", name)
	require.Equal(t, []string{"route"}, args)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	out, err := platform.Run(ctx, "sh", "-c", "echo hello")
	require.NoError(t, err)
	require.Equal(t, "hello", out)

	_, err = platform.Run(ctx, "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")

	require.Error(t, platform.RunSilent(ctx, "/nonexistent/binary"))
}

func TestExecStart(t *testing.T) {
	var out bytes.Buffer
	e := platform.Exec{Stdout: &out}
	require.NoError(t, e.Start("true"))
	require.Error(t, e.Start("/nonexistent/binary"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, platform.ParseLevel(tt.in), tt.in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := platform.NewLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "ip", "1.2.3.4")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "ip=1.2.3.4")
}
