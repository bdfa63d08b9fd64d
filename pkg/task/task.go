// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package task

import (
	"context"
	"io"

	"github.com/vmware/ssh-fanout/pkg/ssh"
)

// Task is one unit of remote work run over an established client. It
// returns the remote exit code; err is set only when no exit code could be
// obtained.
type Task interface {
	Name() string
	Run(ctx context.Context, client *ssh.Client, stdout, stderr io.Writer) (int, error)
}
