// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package plan

import (
	"context"
	"io"

	"github.com/vmware/ssh-fanout/pkg/resolve"
)

// DefaultParallel is the number of hosts run at once unless told otherwise.
const DefaultParallel = 100

// Transport runs command as user on one host, copying the remote output to
// stdout and stderr as it arrives. It returns the remote exit code, or an
// error when the host could not be reached or no exit code was reported.
type Transport interface {
	Run(ctx context.Context, host resolve.ResolvedHost, user, command string, stdout, stderr io.Writer) (int, error)
}

// Sink receives the live output of running executions. Stream is called
// once per dispatched host; both writers are closed when that host's
// execution ends.
type Sink interface {
	Stream(host resolve.ResolvedHost) (stdout, stderr io.WriteCloser)
}

type ExecutionPlan struct {
	Command  string
	User     string
	Parallel int
	// Hosts in original-index order. Hosts without an address are reported
	// and skipped.
	Hosts []resolve.ResolvedHost

	Transport Transport
	Sink      Sink
	// OnBatch, when set, receives each batch's outcomes as soon as the
	// batch has finished.
	OnBatch func(batch int, outcomes []Outcome)
}

// Outcome is the terminal result of one host's execution. ExitCode is only
// meaningful when ConnErr is nil.
type Outcome struct {
	Host     resolve.ResolvedHost
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	ConnErr  error
}

// Connected reports whether the command ran and reported an exit code.
func (o Outcome) Connected() bool {
	return o.ConnErr == nil
}

// Succeeded reports whether the command ran and exited 0.
func (o Outcome) Succeeded() bool {
	return o.ConnErr == nil && o.ExitCode == 0
}

// Report is everything a run produced.
type Report struct {
	// Outcomes in original-index order, one per dispatched host.
	Outcomes []Outcome
	// Unresolved hosts, never dispatched.
	Unresolved []resolve.ResolvedHost
}

// Summary counts a run's results.
type Summary struct {
	Total      int
	Succeeded  int
	NonZero    int
	ConnFailed int
	Unresolved int
}

// Summary tallies the report.
func (r *Report) Summary() Summary {
	s := Summary{
		Total:      len(r.Outcomes) + len(r.Unresolved),
		Unresolved: len(r.Unresolved),
	}
	for _, o := range r.Outcomes {
		switch {
		case !o.Connected():
			s.ConnFailed++
		case o.ExitCode == 0:
			s.Succeeded++
		default:
			s.NonZero++
		}
	}
	return s
}
