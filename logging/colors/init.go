package colors

// enabled describes whether Colorize emits ANSI escape codes.
var enabled bool

// init will ensure that ANSI coloring is enabled on Windows and Unix systems. Note that ANSI coloring is enabled by
// default on Unix system and Windows needs specific kernel calls for enablement
func init() {
	EnableColor()
}

// DisableColor turns off ANSI escape codes for every subsequent Colorize call.
func DisableColor() {
	enabled = false
}

// Enabled returns whether ANSI coloring is currently active.
func Enabled() bool {
	return enabled
}
