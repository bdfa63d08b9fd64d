// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmware/ssh-fanout/pkg/hosts"
	"github.com/vmware/ssh-fanout/pkg/logging"
)

// NewCommandKnownHosts lists the host names found in known_hosts, the
// corpus --known-hosts matches against. With -e only matching names are
// listed, in the same order and without repeats, as a run would use them.
func NewCommandKnownHosts(opts *runOptions) *cobra.Command {
	var patterns []string

	cmd := &cobra.Command{
		Use:   "known-hosts",
		Short: "List host names from known_hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetVerbose(opts.verbose)

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			corpus, err := hosts.ReadKnownHosts(cfg.KnownHosts)
			if err != nil {
				return err
			}

			list := hosts.IndexedNames(hosts.Dedup(hosts.FromNames(corpus)))
			if len(patterns) > 0 {
				matched, err := hosts.MatchAll(patterns, corpus)
				if err != nil {
					return err
				}
				list = hosts.IndexedNames(hosts.Dedup(matched))
			}

			for _, name := range list {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			logger.Debugf("%d of %d names listed", len(list), len(corpus))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&patterns, "expression", "e", nil, "regular expression to filter names, may be repeated")
	cmd.Flags().StringVar(&opts.knownHostsFile, "known-hosts-file", "", "known_hosts file (default ~/.ssh/known_hosts)")

	return cmd
}
