// internal/settings/effects.go
package settings

import "time"

// Document-level markers derived from the settings record. The embedding
// UI maps these onto whatever its display layer uses for theming.
const (
	MarkerLightTheme  = "light-theme"
	MarkerDarkTheme   = "dark-theme"
	MarkerCompactMode = "compact-mode"
)

// Feedback sound kinds. Anything other than SoundMessage gets the lower
// pitch.
const SoundMessage = "message"

const (
	messageToneHz = 800
	defaultToneHz = 600
	toneDuration  = 100 * time.Millisecond
)

// DocumentRoot receives the markers applied from the current record. Both
// marker effects are level-triggered and idempotent, so implementations
// must tolerate redundant calls.
type DocumentRoot interface {
	SetMarker(name string, on bool)
}

// Synthesizer produces the short audible feedback tone. Errors are
// swallowed by the store; feedback is not a critical path.
type Synthesizer interface {
	Tone(freqHz float64, d time.Duration) error
}
