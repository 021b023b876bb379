package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPageLoaded  EventType = "page_loaded"
	EventPageWritten EventType = "page_written"
	EventAudioStored EventType = "audio_stored"
	EventConversion  EventType = "conversion"
)

// Conversion operations reported in ConversionEvent.Op.
const (
	OpExtract = "extract"
	OpLoad    = "load"
	OpProcess = "process"
	OpSave    = "save"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Format    string    `json:"format"`
}

// PageEvent is emitted once per page read or written.
type PageEvent struct {
	EventBase
	PageID  string `json:"page_id"`
	Buttons int    `json:"buttons"`
	Skipped int    `json:"skipped,omitempty"` // cells dropped for schema problems
}

// AudioEvent is emitted for each audio payload written to a content store.
type AudioEvent struct {
	EventBase
	ContentID    string `json:"content_id"`
	Bytes        int    `json:"bytes"`
	Deduplicated bool   `json:"deduplicated"`
}

// ConversionEvent is emitted when a contract operation finishes.
type ConversionEvent struct {
	EventBase
	Op       string        `json:"op"`
	Path     string        `json:"path"`
	Pages    int           `json:"pages"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Hooks defines callbacks for conversion observability. Nil callbacks are skipped.
type Hooks struct {
	OnPage       func(context.Context, *PageEvent)
	OnAudio      func(context.Context, *AudioEvent)
	OnConversion func(context.Context, *ConversionEvent)
}

// EmitPage invokes OnPage if set.
func (h Hooks) EmitPage(ctx context.Context, format string, typ EventType, pageID string, buttons, skipped int) {
	if h.OnPage == nil {
		return
	}
	h.OnPage(ctx, &PageEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: typ, Format: format},
		PageID:    pageID,
		Buttons:   buttons,
		Skipped:   skipped,
	})
}

// EmitAudio invokes OnAudio if set.
func (h Hooks) EmitAudio(ctx context.Context, format, contentID string, size int, dedup bool) {
	if h.OnAudio == nil {
		return
	}
	h.OnAudio(ctx, &AudioEvent{
		EventBase:    EventBase{Timestamp: time.Now(), Type: EventAudioStored, Format: format},
		ContentID:    contentID,
		Bytes:        size,
		Deduplicated: dedup,
	})
}

// EmitConversion invokes OnConversion if set.
func (h Hooks) EmitConversion(ctx context.Context, e *ConversionEvent) {
	if h.OnConversion == nil {
		return
	}
	e.Type = EventConversion
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	h.OnConversion(ctx, e)
}
