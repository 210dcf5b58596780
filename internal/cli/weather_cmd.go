// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/libcat-tui/internal/api"
)

func newWeatherCmd(opts *rootOptions) *cobra.Command {
	var (
		city     string
		lat, lon float64
		asJSON   bool
		cache    bool
	)
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Look up the weather for a city or position",
		Example: `  libcat weather --city London
  libcat weather --lat 51.5 --lon -0.12 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byCoords := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			switch {
			case byCoords && city != "":
				return errors.New("use either --city or --lat/--lon")
			case byCoords && !(cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")):
				return errors.New("--lat and --lon must be given together")
			}

			rt, err := newRuntime(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if !byCoords && city == "" {
				city = rt.cfg.UI.DefaultCity
			}
			if !byCoords && city == "" {
				return errors.New("--city is required")
			}

			var raw json.RawMessage
			if byCoords {
				raw, err = rt.client.WeatherByCoords(cmd.Context(), lat, lon)
			} else {
				raw, err = rt.client.WeatherByCity(cmd.Context(), city)
			}
			if err != nil {
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), "weather", nil, err)
				}
				return err
			}

			if cache {
				if err := rt.ctrl.CacheWeather(raw); err != nil {
					return err
				}
			}

			w, ok := api.ParseWeather(raw)
			if asJSON {
				data := WeatherData{Raw: raw}
				if ok {
					data.City, data.TempC = w.City, w.TempC
					data.Condition, data.Description = w.Condition, w.Description
				}
				return writeJSON(cmd.OutOrStdout(), "weather", data, nil)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No weather data.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %.1f°C, %s\n", w.Emoji(), w.City, w.TempC, w.Description)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&city, "city", "", "City name")
	f.Float64Var(&lat, "lat", 0, "Latitude")
	f.Float64Var(&lon, "lon", 0, "Longitude")
	f.BoolVar(&asJSON, "json", false, "Output as JSON")
	f.BoolVar(&cache, "cache", false, "Store the result for the terminal UI")
	return cmd
}
