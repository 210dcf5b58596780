// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"strings"
)

// Weather is the subset of the weather document the UI displays.
type Weather struct {
	City        string
	TempC       float64
	Condition   string // e.g. "Clouds"
	Description string // e.g. "broken clouds"
}

type weatherDoc struct {
	Name string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// ParseWeather extracts the displayed fields. It reports false when the
// document lacks a weather condition, in which case nothing is shown.
func ParseWeather(raw json.RawMessage) (*Weather, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var doc weatherDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if len(doc.Weather) == 0 {
		return nil, false
	}

	w := &Weather{
		City:        doc.Name,
		Condition:   doc.Weather[0].Main,
		Description: doc.Weather[0].Description,
	}
	if doc.Main != nil && doc.Main.Temp != nil {
		w.TempC = *doc.Main.Temp
	}
	return w, true
}

// Emoji returns the symbol for the condition.
func (w *Weather) Emoji() string {
	switch strings.ToLower(w.Condition) {
	case "clear":
		return "☀️"
	case "clouds":
		return "☁️"
	case "rain", "drizzle":
		return "🌧️"
	case "thunderstorm":
		return "⛈️"
	case "snow":
		return "❄️"
	case "mist", "fog", "haze":
		return "🌫️"
	default:
		return "🌡️"
	}
}
