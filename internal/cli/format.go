package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stock-assistant/internal/tools"
)

// FormatDateTime formats a journal timestamp in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02-Jan-2006 15:04:05")
}

// FormatDuration formats a tool or model call duration.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// ShortID returns the first eight characters of a session id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// FormatParameters renders a tool's parameters as "ticker, window", marking
// optional ones with "?".
func FormatParameters(d *tools.Descriptor) string {
	required := make(map[string]bool, len(d.Parameters.Required))
	for _, name := range d.Parameters.Required {
		required[name] = true
	}

	names := make([]string, 0, len(d.Parameters.Properties))
	for name := range d.Parameters.Properties {
		names = append(names, name)
	}
	// ticker first, then alphabetical
	sort.Slice(names, func(i, j int) bool {
		if names[i] == tools.ArgTicker || names[j] == tools.ArgTicker {
			return names[i] == tools.ArgTicker
		}
		return names[i] < names[j]
	})

	for i, name := range names {
		if !required[name] {
			names[i] = name + "?"
		}
	}
	return strings.Join(names, ", ")
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}
