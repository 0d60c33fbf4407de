package tui

import "strings"

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"

	BoldWhite = "\033[1;37m"
)

// Colorizer wraps text with ANSI color codes if colors are enabled.
type Colorizer struct {
	enabled bool
}

// NewColorizer creates a new Colorizer.
func NewColorizer(enabled bool) *Colorizer {
	return &Colorizer{enabled: enabled}
}

// Apply applies the given color to the text.
func (c *Colorizer) Apply(color, text string) string {
	if !c.enabled {
		return text
	}
	return color + text + Reset
}

// Header formats text as a header.
func (c *Colorizer) Header(text string) string {
	return c.Apply(BoldWhite, text)
}

// Path formats a file path.
func (c *Colorizer) Path(text string) string {
	return c.Apply(Blue, text)
}

// Success formats success text.
func (c *Colorizer) Success(text string) string {
	return c.Apply(Green, text)
}

// Error formats error text.
func (c *Colorizer) Error(text string) string {
	return c.Apply(Red, text)
}

// Warning formats warning text.
func (c *Colorizer) Warning(text string) string {
	return c.Apply(Yellow, text)
}

// Dim formats secondary text.
func (c *Colorizer) Dim(text string) string {
	return c.Apply(Gray, text)
}

// Cyan formats text in cyan color.
func (c *Colorizer) Cyan(text string) string {
	return c.Apply(Cyan, text)
}

// Number formats numbers and stats.
func (c *Colorizer) Number(text string) string {
	return c.Apply(Yellow, text)
}

// Verdict colors a verdict string: allow green, block red. Trailing
// padding is preserved so colored cells keep their column width.
func (c *Colorizer) Verdict(verdict string) string {
	switch strings.TrimSpace(verdict) {
	case "allow":
		return c.Success(verdict)
	case "block":
		return c.Error(verdict)
	default:
		return verdict
	}
}

// CheckStatus colors a check result status.
func (c *Colorizer) CheckStatus(status string) string {
	switch strings.TrimSpace(status) {
	case "allow":
		return c.Success(status)
	case "block":
		return c.Error(status)
	case "warn":
		return c.Warning(status)
	case "modify":
		return c.Cyan(status)
	default:
		return status
	}
}

// StatusOK formats an OK status indicator.
func (c *Colorizer) StatusOK() string {
	return c.Apply(Green, "[ok]")
}

// StatusFail formats a fail status indicator.
func (c *Colorizer) StatusFail() string {
	return c.Apply(Red, "[!!]")
}

// StatusSkip formats a skip status indicator.
func (c *Colorizer) StatusSkip() string {
	return c.Apply(Gray, "[--]")
}

// DiffAdd formats added lines in diff.
func (c *Colorizer) DiffAdd(text string) string {
	return c.Apply(Green, text)
}

// DiffRemove formats removed lines in diff.
func (c *Colorizer) DiffRemove(text string) string {
	return c.Apply(Red, text)
}

// DiffHeader formats diff headers.
func (c *Colorizer) DiffHeader(text string) string {
	return c.Apply(Cyan, text)
}
