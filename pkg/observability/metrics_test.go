package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	h := m.Hooks()

	h.EmitPage(ctx, "snap", domain.EventPageLoaded, "home", 4, 2)
	h.EmitPage(ctx, "snap", domain.EventPageLoaded, "food", 3, 0)
	h.EmitAudio(ctx, "snap", "SND:abc", 100, false)
	h.EmitAudio(ctx, "snap", "SND:abc", 100, true)
	h.EmitConversion(ctx, &domain.ConversionEvent{
		EventBase: domain.EventBase{Format: "snap"},
		Op:        domain.OpLoad,
		Duration:  20 * time.Millisecond,
	})
	h.EmitConversion(ctx, &domain.ConversionEvent{
		EventBase: domain.EventBase{Format: "snap"},
		Op:        domain.OpLoad,
		Err:       domain.NewError(domain.KindCorruption, "snap.open", "x.sps", errors.New("bad")),
	})

	expected := `
# HELP lattice_pages_total Pages read or written.
# TYPE lattice_pages_total counter
lattice_pages_total{event="page_loaded",format="snap"} 2
# HELP lattice_skipped_cells_total Cells dropped while reading because of schema problems.
# TYPE lattice_skipped_cells_total counter
lattice_skipped_cells_total{format="snap"} 2
# HELP lattice_audio_bytes_total Bytes of newly stored audio.
# TYPE lattice_audio_bytes_total counter
lattice_audio_bytes_total{format="snap"} 100
# HELP lattice_conversions_total Conversion operations by format, operation and result.
# TYPE lattice_conversions_total counter
lattice_conversions_total{format="snap",op="load",result="corruption"} 1
lattice_conversions_total{format="snap",op="load",result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"lattice_pages_total", "lattice_skipped_cells_total", "lattice_audio_bytes_total", "lattice_conversions_total"))

	n, err := testutil.GatherAndCount(reg, "lattice_audio_payloads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(reg, "lattice_conversion_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", observability.Result(nil))
	assert.Equal(t, "io", observability.Result(domain.NewError(domain.KindIO, "op", "", errors.New("x"))))
	assert.Equal(t, "error", observability.Result(errors.New("plain")))
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.Hooks{OnPage: func(context.Context, *domain.PageEvent) { calls = append(calls, "a") }}
	b := domain.Hooks{
		OnPage:       func(context.Context, *domain.PageEvent) { calls = append(calls, "b") },
		OnConversion: func(context.Context, *domain.ConversionEvent) { calls = append(calls, "conv") },
	}

	h := observability.Chain(a, domain.Hooks{}, b)
	h.EmitPage(context.Background(), "gridset", domain.EventPageWritten, "p", 1, 0)
	h.EmitConversion(context.Background(), &domain.ConversionEvent{})
	h.EmitAudio(context.Background(), "gridset", "SND:x", 1, false)

	assert.Equal(t, []string{"a", "b", "conv"}, calls)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := observability.LoggingHooks(logger)

	h.EmitPage(context.Background(), "gridset", domain.EventPageLoaded, "home", 3, 1)
	h.EmitConversion(context.Background(), &domain.ConversionEvent{
		EventBase: domain.EventBase{Format: "gridset"},
		Op:        domain.OpSave,
		Err:       errors.New("disk full"),
	})

	out := buf.String()
	assert.Contains(t, out, "page_loaded")
	assert.Contains(t, out, "page=home")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "result=error")
}
