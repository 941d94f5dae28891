package ui

import (
	"strings"

	"github.com/idilsaglam/fintrack/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending string
	Info, Warn                                    string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymDone, SymPending, SymActive                string
}

var current Theme

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m",
			Info: "\033[94m", Warn: "\033[93m",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymDone: "✔", SymPending: "•", SymActive: "▶",
		}
	case "mono":
		disableColor = true
		current = Theme{
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymDone: "x", SymPending: "-", SymActive: ">",
		}
	default: // classic
		current = Theme{
			Title: bold, Muted: fgGray, Accent: fgBlue,
			Success: fgGreen, Error: fgRed, Pending: fgYellow,
			Info: fgBlue, Warn: fgYellow,
			CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
			H: "─", V: "│",
			SymDone: "✔", SymPending: "•", SymActive: "▶",
		}
	}
}

// Expose what renderers need
func Current() Theme { return current }

// StatusColor: Completed green, InProgress blue, anything else muted.
func (t Theme) StatusColor(status string) string {
	switch status {
	case model.StatusCompleted:
		return t.Success
	case model.StatusInProgress:
		return t.Info
	}
	return t.Muted
}

// PriorityColor: High red, Medium yellow, anything else muted.
func (t Theme) PriorityColor(priority string) string {
	switch priority {
	case model.PriorityHigh:
		return t.Error
	case model.PriorityMedium:
		return t.Warn
	}
	return t.Muted
}

// StatusSymbol picks the row marker for a status.
func (t Theme) StatusSymbol(status string) string {
	switch status {
	case model.StatusCompleted:
		return t.SymDone
	case model.StatusInProgress:
		return t.SymActive
	}
	return t.SymPending
}

// Badge renders a bracketed, coloured label.
func Badge(color, text string) string {
	if text == "" {
		text = "?"
	}
	return C(color, "["+text+"]")
}
