package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primaryColor).
			Padding(0, 6)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)
)

var rule = strings.Repeat("─", 64)

// renderBanner shows the title box and the effective line settings.
func renderBanner(cfg vital.Config) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("VITAL SERIAL READER v%s", version)))
	b.WriteString("\n\nConfiguration:\n")
	rows := [][2]string{
		{"Port:", cfg.Device},
		{"Baud rate:", fmt.Sprint(cfg.BaudRate)},
		{"Data bits:", fmt.Sprint(cfg.DataBits)},
		{"Parity:", cfg.Parity.String()},
		{"Stop bits:", fmt.Sprint(cfg.StopBits)},
		{"Timeout:", formatDuration(cfg.ReadTimeout)},
	}
	for _, r := range rows {
		b.WriteString("  " + labelStyle.Render(r[0]) + r[1] + "\n")
	}
	b.WriteString("\nPress Ctrl+C to quit\n")
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}
