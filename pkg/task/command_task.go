// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package task

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	cryptoSSH "golang.org/x/crypto/ssh"

	"github.com/vmware/ssh-fanout/pkg/logging"
	"github.com/vmware/ssh-fanout/pkg/ssh"
)

var logger = logging.For("task")

// ErrNoExitStatus is returned when the remote side closed the session
// without reporting how the command ended.
var ErrNoExitStatus = errors.New("remote command exited without exit status")

// CommandTask runs one shell command.
type CommandTask struct {
	Description string
	Command     string
}

// Name returns the description, or the command when none is set.
func (t *CommandTask) Name() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Command
}

// Run executes the command once, streaming its output. A non-zero remote
// exit is a result, not an error.
func (t *CommandTask) Run(ctx context.Context, client *ssh.Client, stdout, stderr io.Writer) (int, error) {
	log := logger.WithFields(logrus.Fields{"remote": client.RemoteAddr().String(), "command": t.Command})

	err := client.Stream(ctx, t.Command, stdout, stderr)
	if err == nil {
		log.Debug("command finished with exit code 0")
		return 0, nil
	}

	// Try to extract exit code from error if possible
	var ee *cryptoSSH.ExitError
	if errors.As(err, &ee) {
		log.Debugf("command finished with exit code %d", ee.ExitStatus())
		return ee.ExitStatus(), nil
	}

	var missing *cryptoSSH.ExitMissingError
	if errors.As(err, &missing) {
		return -1, ErrNoExitStatus
	}

	// Not an ExitError, treat as command execution failure
	log.Debugf("command execution failed: %v", err)
	return -1, fmt.Errorf("command '%s' execution failed: %w", t.Command, err)
}
