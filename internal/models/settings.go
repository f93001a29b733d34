// internal/models/settings.go
package models

import "encoding/json"

// Theme values applied as document-level markers
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ChatBubbleStyle values consumed by the chat UI
type ChatBubbleStyle string

const (
	BubbleModern  ChatBubbleStyle = "modern"
	BubbleClassic ChatBubbleStyle = "classic"
	BubbleMinimal ChatBubbleStyle = "minimal"
	BubbleBubble  ChatBubbleStyle = "bubble"
)

// Settings is the per-profile preference record persisted under the
// "app_settings" storage key. Every field always holds a legal value.
type Settings struct {
	Theme               Theme           `json:"theme"`
	Notifications       bool            `json:"notifications"`
	SoundEnabled        bool            `json:"soundEnabled"`
	VoiceAutoplay       bool            `json:"voiceAutoplay"`
	Language            string          `json:"language"`
	ChatBubbleStyle     ChatBubbleStyle `json:"chatBubbleStyle"`
	ShowTypingIndicator bool            `json:"showTypingIndicator"`
	MessageSound        bool            `json:"messageSound"`
	CompactMode         bool            `json:"compactMode"`
	AutoSaveChat        bool            `json:"autoSaveChat"`
}

// DefaultSettings returns the record used on first load and after a reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:               ThemeDark,
		Notifications:       true,
		SoundEnabled:        true,
		VoiceAutoplay:       false,
		Language:            "en",
		ChatBubbleStyle:     BubbleModern,
		ShowTypingIndicator: true,
		MessageSound:        true,
		CompactMode:         false,
		AutoSaveChat:        true,
	}
}

// ValidTheme reports whether t is a known theme value.
func ValidTheme(t Theme) bool {
	return t == ThemeDark || t == ThemeLight
}

// ValidBubbleStyle reports whether s is a known chat bubble style.
func ValidBubbleStyle(s ChatBubbleStyle) bool {
	switch s {
	case BubbleModern, BubbleClassic, BubbleMinimal, BubbleBubble:
		return true
	}
	return false
}

// MergeSettings deserializes a persisted settings blob, filling every
// absent, wrong-typed or out-of-enum field from defaults. Malformed input
// yields pure defaults. Unknown keys are ignored, which keeps older blobs
// loadable as new settings are added.
func MergeSettings(raw []byte) Settings {
	out := DefaultSettings()
	if len(raw) == 0 {
		return out
	}

	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		return out
	}

	if v, ok := blob["theme"]; ok {
		var t Theme
		if json.Unmarshal(v, &t) == nil && ValidTheme(t) {
			out.Theme = t
		}
	}
	if v, ok := blob["chatBubbleStyle"]; ok {
		var s ChatBubbleStyle
		if json.Unmarshal(v, &s) == nil && ValidBubbleStyle(s) {
			out.ChatBubbleStyle = s
		}
	}
	if v, ok := blob["language"]; ok {
		var lang string
		if json.Unmarshal(v, &lang) == nil && lang != "" {
			out.Language = lang
		}
	}

	mergeBool(blob, "notifications", &out.Notifications)
	mergeBool(blob, "soundEnabled", &out.SoundEnabled)
	mergeBool(blob, "voiceAutoplay", &out.VoiceAutoplay)
	mergeBool(blob, "showTypingIndicator", &out.ShowTypingIndicator)
	mergeBool(blob, "messageSound", &out.MessageSound)
	mergeBool(blob, "compactMode", &out.CompactMode)
	mergeBool(blob, "autoSaveChat", &out.AutoSaveChat)

	return out
}

func mergeBool(blob map[string]json.RawMessage, key string, dst *bool) {
	v, ok := blob[key]
	if !ok {
		return
	}
	var b bool
	if json.Unmarshal(v, &b) == nil {
		*dst = b
	}
}
