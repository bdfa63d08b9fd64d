// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package sshtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// WriteClientKey generates an ed25519 key, writes it in OpenSSH format to
// dir/id_test (encrypted when passphrase is set) and returns its signer.
func WriteClientKey(dir, passphrase string) (ssh.Signer, string, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate client key: %w", err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test@sshtest")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test@sshtest", []byte(passphrase))
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal client key: %w", err)
	}

	path := filepath.Join(dir, "id_test")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, "", err
	}

	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, "", err
	}
	return signer, path, nil
}
