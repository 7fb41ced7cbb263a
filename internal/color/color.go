package color

import (
	"os"
)

// ANSI color codes
const (
	reset = "\033[0m"
	red   = "\033[31m"
	green = "\033[32m"
	bold  = "\033[1m"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	if term == "dumb" || term == "" {
		return false
	}

	return true
}

// Add colors a string to indicate an added column (green)
func (c *Color) Add(text string) string {
	if !c.enabled {
		return text
	}
	return green + text + reset
}

// Remove colors a string to indicate a removed column (red)
func (c *Color) Remove(text string) string {
	if !c.enabled {
		return text
	}
	return red + text + reset
}

// Bold makes text bold
func (c *Color) Bold(text string) string {
	if !c.enabled {
		return text
	}
	return bold + text + reset
}
