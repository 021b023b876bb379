package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice/pkg/domain"
)

const namespace = "lattice"

// Metrics holds the conversion collectors.
type Metrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	pages       *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	audio       *prometheus.CounterVec
	audioBytes  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Conversion operations by format, operation and result.",
			},
			[]string{"format", "op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Duration of conversion operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"format", "op"},
		),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_total",
				Help:      "Pages read or written.",
			},
			[]string{"format", "event"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_cells_total",
				Help:      "Cells dropped while reading because of schema problems.",
			},
			[]string{"format"},
		),
		audio: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audio_payloads_total",
				Help:      "Audio payloads written to a content store.",
			},
			[]string{"format", "deduplicated"},
		),
		audioBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audio_bytes_total",
				Help:      "Bytes of newly stored audio.",
			},
			[]string{"format"},
		),
	}
	for _, c := range []prometheus.Collector{m.conversions, m.duration, m.pages, m.skipped, m.audio, m.audioBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns hooks recording into the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnPage: func(_ context.Context, e *domain.PageEvent) {
			m.pages.WithLabelValues(e.Format, string(e.Type)).Inc()
			if e.Skipped > 0 {
				m.skipped.WithLabelValues(e.Format).Add(float64(e.Skipped))
			}
		},
		OnAudio: func(_ context.Context, e *domain.AudioEvent) {
			m.audio.WithLabelValues(e.Format, strconv.FormatBool(e.Deduplicated)).Inc()
			if !e.Deduplicated {
				m.audioBytes.WithLabelValues(e.Format).Add(float64(e.Bytes))
			}
		},
		OnConversion: func(_ context.Context, e *domain.ConversionEvent) {
			m.conversions.WithLabelValues(e.Format, e.Op, Result(e.Err)).Inc()
			m.duration.WithLabelValues(e.Format, e.Op).Observe(e.Duration.Seconds())
		},
	}
}

// Result renders an operation outcome as a metric label: "ok", the error kind,
// or "error" for unclassified failures.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}
