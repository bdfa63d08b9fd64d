// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vmware/ssh-fanout/pkg/config"
	"github.com/vmware/ssh-fanout/pkg/logging"
)

var logger = logging.For("cli")

// loadConfig merges defaults, the config file and the flags the user set,
// in that order of precedence.
func loadConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	path, required := opts.configFile, true
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path, required = defaultPath, false
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	logger.Debugf("using config %s", path)

	applyFlags(cmd, opts, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.New("invalid configuration: " + err.Error())
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *runOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.User = opts.username
	}
	if flags.Changed("parallel") {
		cfg.Parallel = opts.parallel
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("identity") {
		cfg.IdentityFile = opts.identityFile
	}
	if flags.Changed("known-hosts-file") {
		cfg.KnownHosts = opts.knownHostsFile
	}
	if flags.Changed("host-key-policy") {
		cfg.HostKeyPolicy = opts.hostKeyPolicy
	}
	if flags.Changed("nameserver") {
		cfg.Nameserver = opts.nameserver
	}
	if flags.Changed("dial-timeout") {
		cfg.DialTimeout.Duration = opts.dialTimeout
	}
}
