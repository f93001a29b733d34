// internal/models/settings_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSettingsEmptyInput(t *testing.T) {
	assert.Equal(t, DefaultSettings(), MergeSettings(nil))
	assert.Equal(t, DefaultSettings(), MergeSettings([]byte("")))
}

func TestMergeSettingsPartialBlob(t *testing.T) {
	got := MergeSettings([]byte(`{"theme":"light","language":"fr"}`))

	want := DefaultSettings()
	want.Theme = ThemeLight
	want.Language = "fr"
	assert.Equal(t, want, got)
}

func TestMergeSettingsIgnoresUnknownKeys(t *testing.T) {
	got := MergeSettings([]byte(`{"theme":"light","futureSetting":42}`))
	assert.Equal(t, ThemeLight, got.Theme)
}

func TestMergeSettingsRejectsWrongTypes(t *testing.T) {
	got := MergeSettings([]byte(`{"soundEnabled":"yes","compactMode":1,"language":7}`))
	assert.Equal(t, DefaultSettings(), got)
}

func TestMergeSettingsRejectsUnknownEnumValues(t *testing.T) {
	got := MergeSettings([]byte(`{"theme":"sepia","chatBubbleStyle":"square"}`))
	assert.Equal(t, ThemeDark, got.Theme)
	assert.Equal(t, BubbleModern, got.ChatBubbleStyle)
}

func TestMergeSettingsRoundTrip(t *testing.T) {
	record := DefaultSettings()
	record.Theme = ThemeLight
	record.ChatBubbleStyle = BubbleMinimal
	record.Notifications = false
	record.Language = "ja"

	blob, err := json.Marshal(record)
	require.NoError(t, err)

	assert.Equal(t, record, MergeSettings(blob))
}

func TestDefaultNotificationPayload(t *testing.T) {
	payload := DefaultNotificationPayload()
	assert.Equal(t, "AI Companion", payload.Title)
	assert.Equal(t, "/characters", payload.Data.URL)
	assert.Equal(t, "ai-companion", payload.Tag)
}
