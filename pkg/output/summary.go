// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package output

import (
	"fmt"
	"strings"

	"github.com/vmware/ssh-fanout/pkg/plan"
)

// Mode selects how much of each outcome the summary shows.
type Mode int

const (
	// ModeStreamed shows exit codes and byte counts; the output itself was
	// already shown live.
	ModeStreamed Mode = iota
	// ModeBuffered shows exit codes and the full captured output.
	ModeBuffered
	// ModeCode shows exit codes only.
	ModeCode
)

// Outcomes renders one summary entry per outcome, in the order given.
func (p *Presenter) Outcomes(outcomes []plan.Outcome, mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()

	for _, o := range outcomes {
		fmt.Fprintf(p.w, "%s [%s]\n", p.styles.Host.Render(p.DisplayName(o.Host.Name)), o.Host.Addr)

		if !o.Connected() {
			fmt.Fprintln(p.w, p.styles.Failure.Render(fmt.Sprintf("Can't access server: %v", o.ConnErr)))
			continue
		}

		code := fmt.Sprintf("Code %d", o.ExitCode)
		if o.ExitCode == 0 {
			fmt.Fprintln(p.w, p.styles.Success.Render(code))
		} else {
			fmt.Fprintln(p.w, p.styles.Failure.Render(code))
		}

		switch mode {
		case ModeStreamed:
			fmt.Fprintf(p.w, "stdout %d bytes, stderr %d bytes\n", len(o.Stdout), len(o.Stderr))
		case ModeBuffered:
			fmt.Fprintf(p.w, "%s\n%s", p.styles.Label.Render("STDOUT:"), withNewline(o.Stdout))
			fmt.Fprintf(p.w, "%s\n%s", p.styles.Label.Render("STDERR:"), withNewline(o.Stderr))
		}
	}
}

// Accounting renders the final tally of a run.
func (p *Presenter) Accounting(s plan.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()

	parts := []string{
		p.styles.Success.Render(fmt.Sprintf("%d succeeded", s.Succeeded)),
		count(s.NonZero, "non-zero exit", p.styles.Failure.Render),
		count(s.ConnFailed, "failed to connect", p.styles.Failure.Render),
		count(s.Unresolved, "failed to resolve", p.styles.Failure.Render),
	}
	fmt.Fprintf(p.w, "%d %s: %s\n", s.Total, plural(s.Total, "host", "hosts"), strings.Join(parts, ", "))
}

func count(n int, what string, render func(...string) string) string {
	text := fmt.Sprintf("%d %s", n, what)
	if n == 0 {
		return text
	}
	return render(text)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func withNewline(b []byte) string {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return string(b)
	}
	return string(b) + "\n"
}
