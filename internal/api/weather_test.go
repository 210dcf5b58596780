// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeather(t *testing.T) {
	w, ok := ParseWeather(json.RawMessage(`{"name":"Oslo","main":{"temp":-3.25},"weather":[{"main":"Snow","description":"heavy snow"},{"main":"Mist"}]}`))
	require.True(t, ok)
	assert.Equal(t, &Weather{City: "Oslo", TempC: -3.25, Condition: "Snow", Description: "heavy snow"}, w)
}

func TestParseWeather_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":       ``,
		"not json":    `weather`,
		"no weather":  `{"name":"Oslo","main":{"temp":1}}`,
		"empty array": `{"name":"Oslo","weather":[]}`,
		"wrong shape": `{"weather":"sunny"}`,
		"null":        `null`,
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := ParseWeather(json.RawMessage(raw))
			assert.False(t, ok)
		})
	}
}

func TestParseWeather_MissingTemp(t *testing.T) {
	w, ok := ParseWeather(json.RawMessage(`{"name":"Oslo","weather":[{"main":"Clear","description":"clear sky"}]}`))
	require.True(t, ok)
	assert.Zero(t, w.TempC)
}

func TestWeather_Emoji(t *testing.T) {
	tests := map[string]string{
		"Clear":        "☀️",
		"clouds":       "☁️",
		"Rain":         "🌧️",
		"Drizzle":      "🌧️",
		"Thunderstorm": "⛈️",
		"Snow":         "❄️",
		"Mist":         "🌫️",
		"Fog":          "🌫️",
		"Haze":         "🌫️",
		"Tornado":      "🌡️",
		"":             "🌡️",
	}
	for cond, want := range tests {
		assert.Equal(t, want, (&Weather{Condition: cond}).Emoji(), cond)
	}
}
