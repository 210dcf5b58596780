// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"
)

// Default dimensions used before the first WindowSizeMsg.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// FormatRemaining formats a duration as M:SS, rounding down.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSecs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", totalSecs/60, totalSecs%60)
}

// clampWidth bounds a content width to [lo, hi] within the screen width.
func clampWidth(screen, lo, hi int) int {
	w := screen - 8
	if w < lo {
		w = lo
	}
	if w > hi {
		w = hi
	}
	return w
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
