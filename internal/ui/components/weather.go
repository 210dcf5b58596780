// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/libcat-tui/internal/api"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

// WeatherWidget shows the cached weather document.
type WeatherWidget struct {
	theme   *styles.Theme
	weather *api.Weather
}

// NewWeatherWidget creates an empty widget.
func NewWeatherWidget(theme *styles.Theme) WeatherWidget {
	return WeatherWidget{theme: theme}
}

// SetDocument parses doc. An unusable document hides the widget.
func (w *WeatherWidget) SetDocument(doc json.RawMessage) {
	w.weather, _ = api.ParseWeather(doc)
}

// Weather returns the parsed document, or nil.
func (w WeatherWidget) Weather() *api.Weather {
	return w.weather
}

// View renders the widget, or "" when there is nothing to show.
func (w WeatherWidget) View() string {
	if w.weather == nil {
		return ""
	}
	t := w.theme
	wx := w.weather

	desc := wx.Description
	if desc == "" {
		desc = wx.Condition
	}

	lines := []string{
		t.Label.Render("Weather near your location"),
		wx.Emoji() + " " + cases.Title(language.English).String(desc),
	}
	if wx.City != "" {
		lines = append(lines, t.Subtle.Render("City: ")+wx.City)
	}
	lines = append(lines, t.Subtle.Render("Temperature: ")+strconv.FormatFloat(wx.TempC, 'f', -1, 64)+"°C")

	return t.Weather.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
