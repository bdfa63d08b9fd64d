// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package ssh

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/vmware/ssh-fanout/pkg/ssh/sshtest"
)

const (
	testUser     = "testuser"
	testPassword = "testpass"
)

// startServer runs an in-process server that accepts testPassword and the
// given public keys.
func startServer(t *testing.T, authorized ...ssh.PublicKey) *sshtest.Server {
	t.Helper()

	server, err := sshtest.NewServer(testUser, testPassword, authorized...)
	require.NoError(t, err)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })

	return server
}

func configFor(server *sshtest.Server) *Config {
	cfg := &Config{
		User:    testUser,
		Host:    server.Host(),
		Port:    server.Port(),
		Timeout: 5 * time.Second,
	}
	cfg.SetHostKeyCallback(ssh.FixedHostKey(server.HostKey()))
	return cfg
}

func TestSSHConnectionWithWrongPassword(t *testing.T) {
	server := startServer(t)

	hostConfig := configFor(server)
	hostConfig.Password = "123456" // user config with wrong password

	_, err := NewClient(context.Background(), hostConfig)
	require.Error(t, err)
}

func TestSSHConnectionWithCorrectPassword(t *testing.T) {
	server := startServer(t)

	hostConfig := configFor(server)
	hostConfig.Password = testPassword

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()
}

func TestSSHConnectionWithPrivateKey(t *testing.T) {
	signer, keyPath, err := sshtest.WriteClientKey(t.TempDir(), "")
	require.NoError(t, err)
	server := startServer(t, signer.PublicKey())

	hostConfig := configFor(server)
	hostConfig.PrivateKeyPath = keyPath

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()
}

func TestSSHConnectionWithEncryptedPrivateKey(t *testing.T) {
	signer, keyPath, err := sshtest.WriteClientKey(t.TempDir(), "s3cret")
	require.NoError(t, err)
	server := startServer(t, signer.PublicKey())

	hostConfig := configFor(server)
	hostConfig.PrivateKeyPath = keyPath
	hostConfig.PrivateKeyPassphrase = "s3cret"

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()

	hostConfig.PrivateKeyPassphrase = "wrong"
	_, err = NewClient(context.Background(), hostConfig)
	require.ErrorContains(t, err, "failed to configure auth")
}

func TestSSHConnectionWithAgent(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	keyring := agent.NewKeyring()
	require.NoError(t, keyring.Add(agent.AddedKey{PrivateKey: priv}))

	server := startServer(t, signer.PublicKey())

	hostConfig := configFor(server)
	hostConfig.Agent = keyring

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()
}

func TestSSHConnectionAgentFallsBackToPassword(t *testing.T) {
	server := startServer(t)

	hostConfig := configFor(server)
	hostConfig.Agent = agent.NewKeyring()
	hostConfig.Password = testPassword

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()
}

func TestSSHConnectionWithoutAuth(t *testing.T) {
	server := startServer(t)

	_, err := NewClient(context.Background(), configFor(server))
	require.ErrorContains(t, err, "failed to configure auth")
}

func TestSSHConnectionRefused(t *testing.T) {
	server := startServer(t)
	hostConfig := configFor(server)
	hostConfig.Password = testPassword
	require.NoError(t, server.Stop())

	_, err := NewClient(context.Background(), hostConfig)
	require.Error(t, err)
}

func TestSSHConnectionDialsAddressButChecksHostName(t *testing.T) {
	server := startServer(t)
	knownHostsPath := filepath.Join(t.TempDir(), "known_hosts")

	callback, err := AcceptNewHostKeyCallback(knownHostsPath)
	require.NoError(t, err)

	hostConfig := configFor(server)
	hostConfig.Host = "web1.example"
	hostConfig.Address = server.Host()
	hostConfig.Password = testPassword
	hostConfig.SetHostKeyCallback(callback)

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()

	content, err := os.ReadFile(knownHostsPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "web1.example")
	assert.Contains(t, string(content), server.Host())
}

func TestRunCommandOnLocalServer(t *testing.T) {
	server := startServer(t)
	hostConfig := configFor(server)
	hostConfig.Password = testPassword

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()

	var stdout, stderr bytes.Buffer
	err = client.Stream(context.Background(), "hey!!", &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "HI, i am handled\n", stdout.String())
	assert.Empty(t, stderr.String())
	assert.Equal(t, []string{"hey!!"}, server.ExecutedCommands())
}

func TestStreamSeparatesOutputs(t *testing.T) {
	server := startServer(t)
	hostConfig := configFor(server)
	hostConfig.Password = testPassword

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()

	var stdout, stderr bytes.Buffer
	err = client.Stream(context.Background(), "echo to stdout; warn to stderr; echo again", &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "to stdout\nagain\n", stdout.String())
	assert.Equal(t, "to stderr\n", stderr.String())
}

func TestStreamReportsExitStatus(t *testing.T) {
	server := startServer(t)
	hostConfig := configFor(server)
	hostConfig.Password = testPassword

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()

	var stdout bytes.Buffer
	err = client.Stream(context.Background(), "echo partial; exit 3", &stdout, &bytes.Buffer{})
	var exitErr *ssh.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.ExitStatus())
	assert.Equal(t, "partial\n", stdout.String())
}

func TestStreamCancelled(t *testing.T) {
	server := startServer(t)
	hostConfig := configFor(server)
	hostConfig.Password = testPassword

	client, err := NewClient(context.Background(), hostConfig)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = client.Stream(ctx, "sleep 5s", &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}
