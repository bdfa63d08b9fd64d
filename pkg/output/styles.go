// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles decorate block delimiters and summary headers. Remote output is
// never styled.
type Styles struct {
	Delimiter lipgloss.Style
	Host      lipgloss.Style
	Success   lipgloss.Style
	Failure   lipgloss.Style
	Label     lipgloss.Style
}

// NewStyles returns styles rendered for w. Colors are dropped when w is not
// a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Delimiter: r.NewStyle().Faint(true),
		Host:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Success:   r.NewStyle().Foreground(lipgloss.Color("10")),
		Failure:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Label:     r.NewStyle().Underline(true),
	}
}
