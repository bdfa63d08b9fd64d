// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vmware/ssh-fanout/pkg/plan"
)

const (
	cliName        = "ssh-fanout"
	cliDescription = "Run a command on many hosts over SSH in parallel"
)

// runOptions holds the flags of the root command.
type runOptions struct {
	configFile     string
	verbose        bool
	expressions    []string
	command        string
	username       string
	parallel       int
	useKnownHosts  bool
	noConfirm      bool
	codeOnly       bool
	buffered       bool
	port           int
	identityFile   string
	knownHostsFile string
	hostKeyPolicy  string
	nameserver     string
	dialTimeout    time.Duration
}

// NewRootCommand builds the ssh-fanout command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&runOptions{})
}

func newRootCommand(opts *runOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   cliName + " -e EXPRESSION -c COMMAND",
		Short: cliDescription,
		Long: `Run a command on many hosts over SSH in parallel.

Hosts are given as expressions supporting range and list expansion, for
example 'web-[1:12]-io-{prod,dev}'. With --known-hosts every expression is
a regular expression matched against the names in known_hosts instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandFunc(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to config file (default ~/.config/ssh-fanout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringArrayVarP(&opts.expressions, "expression", "e", nil, "expression to build the server list, may be repeated")
	flags.StringVarP(&opts.command, "command", "c", "", "command to execute on servers")
	flags.StringVarP(&opts.username, "username", "u", "", "remote user (default current user)")
	flags.IntVarP(&opts.parallel, "parallel", "p", plan.DefaultParallel, "number of servers to run on at once")
	flags.BoolVarP(&opts.useKnownHosts, "known-hosts", "k", false, "match expressions as regular expressions against known_hosts")
	flags.BoolVarP(&opts.noConfirm, "noconfirm", "f", false, "don't ask for confirmation")
	flags.BoolVar(&opts.codeOnly, "code", false, "show exit codes only")
	flags.BoolVar(&opts.buffered, "buffered", false, "print each server's output after it finishes instead of streaming it")
	flags.IntVar(&opts.port, "port", 0, "remote SSH port (default 22)")
	flags.StringVarP(&opts.identityFile, "identity", "i", "", "private key file used in addition to ssh-agent")
	flags.StringVar(&opts.knownHostsFile, "known-hosts-file", "", "known_hosts file (default ~/.ssh/known_hosts)")
	flags.StringVar(&opts.hostKeyPolicy, "host-key-policy", "", "unknown host keys: strict, accept-new or off (default accept-new)")
	flags.StringVar(&opts.nameserver, "nameserver", "", "resolve names with this DNS server instead of the system resolver")
	flags.DurationVar(&opts.dialTimeout, "dial-timeout", 0, "SSH connection timeout (default 20s)")

	_ = rootCmd.MarkFlagRequired("expression")
	_ = rootCmd.MarkFlagRequired("command")
	rootCmd.MarkFlagsMutuallyExclusive("code", "buffered")

	rootCmd.AddCommand(
		NewCommandVersion(),
		NewCommandKnownHosts(opts),
	)

	return rootCmd
}

func RootCmd() *cobra.Command {
	return NewRootCommand()
}
