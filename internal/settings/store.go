// internal/settings/store.go
package settings

import (
	"context"
	"encoding/json"
	"sync"

	"companion-client/internal/common/errors"
	"companion-client/internal/common/logger"
	"companion-client/internal/common/metrics"
	"companion-client/internal/models"
	"companion-client/internal/storage"
)

// Storage is the slice of durable client storage the store writes through
// to. Implemented by *storage.Local.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store is the single source of truth for user preferences. It loads with
// a field-wise merge over defaults, persists the full record synchronously
// on every mutation, and reapplies the document-level side effects after
// each one. The in-memory record stays authoritative when a write fails.
type Store struct {
	storage Storage
	doc     DocumentRoot
	synth   Synthesizer
	logger  logger.Logger

	mu      sync.RWMutex
	current models.Settings
}

// NewStore builds a store and performs the initial load. doc and synth may
// be nil when the embedding has no display or audio surface.
func NewStore(ctx context.Context, st Storage, doc DocumentRoot, synth Synthesizer, log logger.Logger) *Store {
	s := &Store{
		storage: st,
		doc:     doc,
		synth:   synth,
		logger:  log.WithFields(map[string]interface{}{"component": "settings"}),
	}
	s.Load(ctx)
	return s
}

// Load re-reads the persisted record, merging with defaults, and replaces
// the in-memory record. Missing or malformed data fails soft to defaults;
// storage read faults do too.
func (s *Store) Load(ctx context.Context) models.Settings {
	merged := models.DefaultSettings()

	raw, found, err := s.storage.Get(ctx, storage.KeySettings)
	if err != nil {
		s.logger.Warn("settings read failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
	} else if found {
		merged = models.MergeSettings([]byte(raw))
	}

	s.mu.Lock()
	s.current = merged
	s.mu.Unlock()

	s.applyEffects(merged)
	return merged
}

// Settings returns a snapshot of the current record.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces exactly one field, keyed by its JSON name, leaving all
// others untouched, then persists the full record. Unknown keys are
// ignored; an ill-typed value falls back to the field's default on the
// next merge. The caller is trusted with the value.
func (s *Store) Update(ctx context.Context, key string, value interface{}) models.Settings {
	s.mu.Lock()

	blob, err := json.Marshal(s.current)
	if err != nil {
		// The record is plain data; this cannot fail in practice.
		s.mu.Unlock()
		return s.Settings()
	}

	var fields map[string]json.RawMessage
	_ = json.Unmarshal(blob, &fields)

	if raw, err := json.Marshal(value); err == nil {
		fields[key] = raw
	}

	merged, _ := json.Marshal(fields)
	s.current = models.MergeSettings(merged)
	updated := s.current
	s.mu.Unlock()

	s.persist(ctx, updated)
	s.applyEffects(updated)
	return updated
}

// Reset replaces the entire record with defaults and persists immediately.
func (s *Store) Reset(ctx context.Context) models.Settings {
	defaults := models.DefaultSettings()

	s.mu.Lock()
	s.current = defaults
	s.mu.Unlock()

	s.persist(ctx, defaults)
	s.applyEffects(defaults)
	return defaults
}

// PlayFeedbackSound schedules a short tone: 800Hz for message feedback,
// 600Hz otherwise. A no-op when soundEnabled is off; synth failures are
// swallowed.
func (s *Store) PlayFeedbackSound(kind string) {
	s.mu.RLock()
	enabled := s.current.SoundEnabled
	s.mu.RUnlock()

	if !enabled || s.synth == nil {
		return
	}

	freq := float64(defaultToneHz)
	if kind == SoundMessage {
		freq = messageToneHz
	}

	if err := s.synth.Tone(freq, toneDuration); err != nil {
		s.logger.Debug("feedback tone unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// persist writes the full record through to storage. Failures are logged
// and counted, never surfaced: the in-memory record remains authoritative
// for the session.
func (s *Store) persist(ctx context.Context, record models.Settings) {
	blob, err := json.Marshal(record)
	if err != nil {
		return
	}

	if err := s.storage.Set(ctx, storage.KeySettings, string(blob)); err != nil {
		stdErr := errors.NewPersistenceFailedError(storage.KeySettings, err)
		s.logger.Warn(stdErr.Message, map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		metrics.SettingsWrites.WithLabelValues("error").Inc()
		return
	}
	metrics.SettingsWrites.WithLabelValues("ok").Inc()
}

// applyEffects reapplies the document-level markers from the full record.
// Level-triggered: runs after every mutation and on load, not only when
// the source field changed.
func (s *Store) applyEffects(record models.Settings) {
	if s.doc == nil {
		return
	}

	if record.Theme == models.ThemeLight {
		s.doc.SetMarker(MarkerLightTheme, true)
		s.doc.SetMarker(MarkerDarkTheme, false)
	} else {
		s.doc.SetMarker(MarkerDarkTheme, true)
		s.doc.SetMarker(MarkerLightTheme, false)
	}

	s.doc.SetMarker(MarkerCompactMode, record.CompactMode)
}
