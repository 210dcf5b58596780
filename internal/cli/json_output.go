// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope for --json output.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Command   string      `json:"command"`
	Data      interface{} `json:"data,omitempty"`
	Error     *string     `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusData is the payload of "status --json".
type StatusData struct {
	State            string     `json:"state"`
	SessionID        string     `json:"session_id,omitempty"`
	User             string     `json:"user,omitempty"`
	LoginTime        *time.Time `json:"login_time,omitempty"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
	LoginAgeSeconds  int64      `json:"login_age_seconds"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	IdleSeconds      int64      `json:"idle_seconds"`
	Store            string     `json:"store"`
}

// WeatherData is the payload of "weather --json".
type WeatherData struct {
	City        string          `json:"city"`
	TempC       float64         `json:"temp_c"`
	Condition   string          `json:"condition"`
	Description string          `json:"description"`
	Raw         json.RawMessage `json:"raw"`
}

func writeJSON(w io.Writer, command string, data interface{}, err error) error {
	resp := JSONResponse{
		Success:   err == nil,
		Command:   command,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
