// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package task

import (
	"context"
	"io"
	"time"

	cryptoSSH "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/vmware/ssh-fanout/pkg/resolve"
	"github.com/vmware/ssh-fanout/pkg/ssh"
)

// SSHTransport opens one SSH connection per host and runs a Task on it. The zero value uses the ssh package defaults.
type SSHTransport struct {
	Port                 int
	DialTimeout          time.Duration
	Password             string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	Agent                agent.Agent
	HostKeyCallback      cryptoSSH.HostKeyCallback
}

// Run dials the host's resolved address, checks its key under the host's
// name, and runs command as user.
func (t *SSHTransport) Run(ctx context.Context, host resolve.ResolvedHost, user, command string, stdout, stderr io.Writer) (int, error) {
	return t.RunTask(ctx, host, user, &CommandTask{Command: command}, stdout, stderr)
}

// RunTask connects to host as user and runs task over the connection.
func (t *SSHTransport) RunTask(ctx context.Context, host resolve.ResolvedHost, user string, task Task, stdout, stderr io.Writer) (int, error) {
	cfg := &ssh.Config{
		User:                 user,
		Host:                 host.Name,
		Port:                 t.Port,
		Timeout:              t.DialTimeout,
		Password:             t.Password,
		PrivateKeyPath:       t.PrivateKeyPath,
		PrivateKeyPassphrase: t.PrivateKeyPassphrase,
		Agent:                t.Agent,
	}
	if host.Addr != nil {
		cfg.Address = host.Addr.String()
	}
	cfg.SetHostKeyCallback(t.HostKeyCallback)

	client, err := ssh.NewClient(ctx, cfg)
	if err != nil {
		logger.Debugf("%s: connect for %q failed: %v", host.Name, task.Name(), err)
		return -1, err
	}
	defer client.Close()

	logger.Debugf("%s: running %q", host.Name, task.Name())
	return task.Run(ctx, client, stdout, stderr)
}
