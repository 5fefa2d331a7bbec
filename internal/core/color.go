package core

// Color is the foreground color of a canvas cell. The tui package maps each
// value to an ANSI color.
type Color uint8

const (
	ColorDefault Color = iota
	ColorWhite
	ColorGray
	ColorCyan
	ColorYellow
	ColorRed
)
