// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vmware/ssh-fanout/pkg/cliui"
	"github.com/vmware/ssh-fanout/pkg/config"
	"github.com/vmware/ssh-fanout/pkg/hosts"
	"github.com/vmware/ssh-fanout/pkg/logging"
	"github.com/vmware/ssh-fanout/pkg/output"
	"github.com/vmware/ssh-fanout/pkg/plan"
	"github.com/vmware/ssh-fanout/pkg/resolve"
	"github.com/vmware/ssh-fanout/pkg/ssh"
	"github.com/vmware/ssh-fanout/pkg/task"
)

// confirmFunc asks whether to go ahead; replaced in tests.
var confirmFunc = cliui.Confirm

func runCommandFunc(cmd *cobra.Command, opts *runOptions) error {
	logging.SetVerbose(opts.verbose)

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	expanded, err := buildHostList(opts.expressions, opts.useKnownHosts, cfg.KnownHosts)
	if err != nil {
		return err
	}
	indexed := hosts.Dedup(expanded)
	if len(indexed) == 0 {
		logger.Warn("No servers matched.")
		return nil
	}

	if cfg.Parallel != plan.DefaultParallel {
		suffix := "s."
		if cfg.Parallel == 1 {
			suffix = "."
		}
		logger.Warnf("Parallelism: %d thread%s", cfg.Parallel, suffix)
	}

	resolved := resolve.New(newLookup(cfg)).Resolve(ctx, indexed, 0)
	valid, _ := reportResolved(resolved)
	if len(valid) == 0 {
		logger.Warnf("None of %d servers could be resolved.", len(resolved))
		return nil
	}

	transport, closeTransport, err := newTransport(cfg)
	if err != nil {
		return err
	}
	defer closeTransport()

	if !opts.noConfirm {
		ok, err := confirmFunc(fmt.Sprintf("Continue on following %d servers?", len(valid)))
		if err != nil && !errors.Is(err, cliui.ErrCancelled) {
			return err
		}
		if !ok {
			logger.Warn("Stopped")
			return nil
		}
	}

	logger.Infof("Run command on %d servers.", len(valid))

	if _, err := execute(ctx, cmd.OutOrStdout(), cfg, opts, resolved, transport); err != nil {
		return err
	}

	if ctx.Err() != nil {
		logger.Warn("Interrupted")
	}
	return nil
}

// execute runs the plan and renders live output, per-batch summaries and
// the final accounting to w.
func execute(ctx context.Context, w io.Writer, cfg *config.Config, opts *runOptions,
	resolved []resolve.ResolvedHost, transport plan.Transport,
) (*plan.Report, error) {
	names := make([]string, 0, len(resolved))
	for _, h := range resolved {
		names = append(names, h.Name)
	}
	presenter := output.NewPresenter(w, output.NewShortener(names))

	mode := output.ModeStreamed
	switch {
	case opts.codeOnly:
		mode = output.ModeCode
	case opts.buffered:
		mode = output.ModeBuffered
	}

	p := &plan.ExecutionPlan{
		Command:   opts.command,
		User:      cfg.User,
		Parallel:  cfg.Parallel,
		Hosts:     resolved,
		Transport: transport,
		OnBatch: func(_ int, outcomes []plan.Outcome) {
			presenter.Outcomes(outcomes, mode)
		},
	}
	if mode == output.ModeStreamed {
		p.Sink = presenter
	}

	report, err := p.Execute(ctx)
	if err != nil {
		return nil, err
	}

	presenter.Accounting(report.Summary())
	return report, nil
}

// buildHostList expands every expression, or in known-hosts mode matches
// every expression as a regular expression against the known_hosts names.
func buildHostList(expressions []string, useKnownHosts bool, knownHostsPath string) ([]hosts.ExpandedHost, error) {
	if !useKnownHosts {
		logger.Info("Using string expansion to build server list.")
		return hosts.ExpandAll(expressions)
	}

	logger.Infof("Using %s to build server list.", knownHostsPath)
	corpus, err := hosts.ReadKnownHosts(knownHostsPath)
	if err != nil {
		return nil, err
	}
	return hosts.MatchAll(expressions, corpus)
}

// reportResolved logs every host with its address, or as unresolvable, and
// splits the list.
func reportResolved(resolved []resolve.ResolvedHost) (valid, unresolved []resolve.ResolvedHost) {
	logger.Info("Matched hosts:")
	for _, h := range resolved {
		if h.Resolved() {
			logger.Infof("%s [%s]", h.Name, h.Addr)
		} else {
			logger.Errorf("%s couldn't be resolved.", h.Name)
			logger.Debugf("%s: %v", h.Name, h.Err)
		}
	}
	return resolve.Partition(resolved)
}

func newLookup(cfg *config.Config) resolve.Lookup {
	if cfg.Nameserver == "" {
		return nil
	}
	logger.Debugf("resolving names with %s", cfg.Nameserver)
	return resolve.NewDNSLookup(cfg.Nameserver)
}

// newTransport sets up authentication and host key checking shared by all
// connections of the run.
func newTransport(cfg *config.Config) (*task.SSHTransport, func(), error) {
	policy, err := ssh.ParseHostKeyPolicy(cfg.HostKeyPolicy)
	if err != nil {
		return nil, nil, err
	}
	if policy == ssh.HostKeyOff {
		logger.Warn("Host key verification is disabled.")
	}
	hostKeyCallback, err := ssh.HostKeyCallback(policy, cfg.KnownHosts)
	if err != nil {
		return nil, nil, err
	}

	transport := &task.SSHTransport{
		Port:                 cfg.Port,
		DialTimeout:          cfg.DialTimeout.Duration,
		Password:             cfg.Password,
		PrivateKeyPath:       cfg.IdentityFile,
		PrivateKeyPassphrase: cfg.Passphrase,
		HostKeyCallback:      hostKeyCallback,
	}

	closeFn := func() {}
	agentConn, err := ssh.DialAgent()
	switch {
	case err == nil:
		transport.Agent = agentConn
		closeFn = func() { _ = agentConn.Close() }
	case errors.Is(err, ssh.ErrNoAgent):
		logger.Debug("no ssh-agent available")
	default:
		logger.Warnf("ssh-agent not used: %v", err)
	}

	if transport.Agent == nil && transport.PrivateKeyPath == "" && transport.Password == "" {
		closeFn()
		return nil, nil, errors.New("no ssh-agent available and neither identity_file nor password configured")
	}

	return transport, closeFn, nil
}
