package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")  // numbers
	colorYellow = lipgloss.Color("220") // non-planar counts
	colorDim    = lipgloss.Color("240") // labels
)

var (
	// labels are padded so that values line up in a column
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim).Width(14)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)
