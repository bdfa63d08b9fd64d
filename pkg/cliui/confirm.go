// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package cliui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth = 40
	listHeight   = 10

	answerYes = "yes"
	answerNo  = "no"
)

var (
	titleStyle      = lipgloss.NewStyle().MarginLeft(2)
	paginationStyle = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle       = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

// ErrCancelled is returned when the prompt is dismissed without an answer.
var ErrCancelled = errors.New("user cancelled")

// Confirm displays an interactive yes/no menu under title and reports
// whether the user chose "yes". "y" and "n" answer directly; Enter takes
// the highlighted option, which starts on "yes".
//
// Example usage:
//
//	ok, err := cliui.Confirm("Continue on following 12 servers?")
//	if err != nil || !ok {
//	    return
//	}
func Confirm(title string) (bool, error) {
	return confirm(title)
}

func confirm(title string, opts ...tea.ProgramOption) (bool, error) {
	m := newConfirmModel(title)

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return false, fmt.Errorf("error running confirmation prompt: %w", err)
	}

	if m.quitting {
		return false, ErrCancelled
	}

	return m.choice == answerYes, nil
}

func newConfirmModel(title string) *model {
	items := []list.Item{item(answerYes), item(answerNo)}

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	return &model{list: l}
}
