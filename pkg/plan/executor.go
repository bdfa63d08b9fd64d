// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package plan

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vmware/ssh-fanout/pkg/logging"
	"github.com/vmware/ssh-fanout/pkg/resolve"
)

var logger = logging.For("plan")

// Execute runs the command on every resolved host, Parallel hosts at a time.
// Batches run one after another; the hosts of a batch run concurrently and
// the next batch starts only when all of them have finished. A host that
// cannot be reached yields an Outcome with ConnErr set and never affects the
// others.
func (p *ExecutionPlan) Execute(ctx context.Context) (*Report, error) {
	if p.Transport == nil {
		return nil, errors.New("execution plan has no transport")
	}
	if p.Command == "" {
		return nil, errors.New("execution plan has no command")
	}
	parallel := p.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}

	valid, unresolved := resolve.Partition(p.Hosts)
	if len(unresolved) > 0 {
		logger.Warnf("%d of %d hosts could not be resolved and will be skipped", len(unresolved), len(p.Hosts))
		for _, h := range unresolved {
			logger.WithField("host", h.Name).Debugf("unresolved: %v", h.Err)
		}
	}

	report := &Report{
		Outcomes:   make([]Outcome, 0, len(valid)),
		Unresolved: unresolved,
	}

	batches := Batches(valid, parallel)
	for i, batch := range batches {
		logger.WithFields(logrus.Fields{
			"batch": i + 1,
			"of":    len(batches),
			"hosts": len(batch),
		}).Debug("dispatching batch")

		outcomes := p.runBatch(ctx, batch)
		report.Outcomes = append(report.Outcomes, outcomes...)
		if p.OnBatch != nil {
			p.OnBatch(i, outcomes)
		}
	}

	return report, nil
}

// runBatch runs one execution per host and joins them all. Every goroutine
// owns its slot of the result slice.
func (p *ExecutionPlan) runBatch(ctx context.Context, batch []resolve.ResolvedHost) []Outcome {
	outcomes := make([]Outcome, len(batch))

	g := new(errgroup.Group)
	for i, host := range batch {
		g.Go(func() error {
			outcomes[i] = p.runHost(ctx, host)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Host.Index < outcomes[j].Host.Index
	})
	return outcomes
}

func (p *ExecutionPlan) runHost(ctx context.Context, host resolve.ResolvedHost) Outcome {
	var stdoutBuf, stderrBuf bytes.Buffer
	var stdout, stderr io.Writer = &stdoutBuf, &stderrBuf

	if p.Sink != nil {
		liveOut, liveErr := p.Sink.Stream(host)
		defer liveOut.Close()
		defer liveErr.Close()
		stdout = io.MultiWriter(&stdoutBuf, liveOut)
		stderr = io.MultiWriter(&stderrBuf, liveErr)
	}

	code, err := p.Transport.Run(ctx, host, p.User, p.Command, stdout, stderr)

	outcome := Outcome{
		Host:   host,
		Stdout: stdoutBuf.Bytes(),
		Stderr: stderrBuf.Bytes(),
	}
	if err != nil {
		logger.WithField("host", host.Name).Debugf("connection failed: %v", err)
		outcome.ConnErr = err
		return outcome
	}
	outcome.ExitCode = code
	return outcome
}

// Batches splits hosts into consecutive slices of at most size hosts.
func Batches(hosts []resolve.ResolvedHost, size int) [][]resolve.ResolvedHost {
	if size <= 0 {
		size = DefaultParallel
	}
	var out [][]resolve.ResolvedHost
	for start := 0; start < len(hosts); start += size {
		end := min(start+size, len(hosts))
		out = append(out, hosts[start:end])
	}
	return out
}
