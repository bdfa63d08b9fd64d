// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package ssh

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// EnvAuthSock names the socket of a running ssh-agent.
const EnvAuthSock = "SSH_AUTH_SOCK"

// ErrNoAgent is returned by DialAgent when no agent socket is advertised.
var ErrNoAgent = errors.New(EnvAuthSock + " is not set")

// Auth represents ssh auth methods.
type Auth []ssh.AuthMethod

// configureAuth offers the agent first, then the private key, then the
// password; the server picks the first one it accepts.
func configureAuth(ag agent.Agent, password, privateKeyFile, passphrase string) (Auth, error) {
	var auth Auth
	if ag != nil {
		auth = append(auth, Agent(ag)...)
	}
	if privateKeyFile != "" {
		keyAuth, err := PrivateKey(privateKeyFile, passphrase)
		if err != nil {
			return nil, err
		}
		auth = append(auth, keyAuth...)
	}
	if password != "" {
		auth = append(auth, Password(password)...)
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no agent/private key/password found to configure SSH auth")
	}
	return auth, nil
}

// Password returns password auth method.
func Password(pass string) Auth {
	return Auth{
		ssh.Password(pass),
	}
}

// PrivateKey returns auth method from private key with or without passphrase.
func PrivateKey(prvFile string, passphrase string) (Auth, error) {
	signer, err := getSigner(prvFile, passphrase)
	if err != nil {
		return nil, err
	}
	return Auth{
		ssh.PublicKeys(signer),
	}, nil
}

// Agent returns auth method backed by the keys an agent holds.
func Agent(ag agent.Agent) Auth {
	return Auth{
		ssh.PublicKeysCallback(ag.Signers),
	}
}

// AgentConn is a connection to a running ssh-agent. It is safe for
// concurrent use by many clients.
type AgentConn struct {
	agent.ExtendedAgent
	conn net.Conn
}

// DialAgent connects to the agent advertised by SSH_AUTH_SOCK.
func DialAgent() (*AgentConn, error) {
	sock := os.Getenv(EnvAuthSock)
	if sock == "" {
		return nil, ErrNoAgent
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("could not connect to ssh-agent: %w", err)
	}
	return &AgentConn{ExtendedAgent: agent.NewClient(conn), conn: conn}, nil
}

// Close the agent connection.
func (a *AgentConn) Close() error {
	return a.conn.Close()
}

// getSigner returns ssh signer from private key file.
func getSigner(prvFile string, passphrase string) (ssh.Signer, error) {
	var (
		err    error
		signer ssh.Signer
	)
	privateKey, err := os.ReadFile(prvFile)
	if err != nil {
		return nil, fmt.Errorf("could not read private key: %w", err)
	}
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(privateKey, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(privateKey)
	}
	return signer, err
}
