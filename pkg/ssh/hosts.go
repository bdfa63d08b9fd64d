// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package ssh

import (
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// DefaultKnownHostsPath returns default user knows hosts file.
func DefaultKnownHostsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

// configureHostKeyCallback returns an accept-new host key callback on the
// default known_hosts file unless a custom callback is provided.
func configureHostKeyCallback(hostKeyCallback ssh.HostKeyCallback) (ssh.HostKeyCallback, error) {
	if hostKeyCallback != nil {
		return hostKeyCallback, nil
	}

	path, err := DefaultKnownHostsPath()
	if err != nil {
		return nil, err
	}

	return AcceptNewHostKeyCallback(path)
}
