// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// default constants
const (
	DefaultTimeout = 20 * time.Second
	DefaultPort    = 22
)

// Client represents ssh client.
type Client struct {
	*ssh.Client
}

type Config struct {
	User string
	// Host is the name the server is known by. It is what host keys are
	// checked against.
	Host string
	// Address is the network address to dial. Host is dialed when empty.
	Address              string
	Port                 int
	Timeout              time.Duration
	Password             string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	Agent                agent.Agent
	hostKeyCallBack      ssh.HostKeyCallback
}

func (c *Config) SetHostKeyCallback(hostKeyCallBack ssh.HostKeyCallback) {
	c.hostKeyCallBack = hostKeyCallBack
}

// NewClient returns new ssh client and error if any. The dial and the SSH
// handshake are both bounded by config.Timeout and by ctx.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	c := &Client{}
	var auth Auth
	var hostKeyCallback ssh.HostKeyCallback
	var err error

	// configure Auth as per users config
	auth, err = configureAuth(config.Agent, config.Password, config.PrivateKeyPath, config.PrivateKeyPassphrase)
	if err != nil {
		return nil, errors.New("failed to configure auth: " + err.Error())
	}

	// configure hostKeyCallback as per users config
	hostKeyCallback, err = configureHostKeyCallback(config.hostKeyCallBack)
	if err != nil {
		return nil, errors.New("failed to configure hostKeyCallBack: " + err.Error())
	}

	// configure default timeout
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	// configure default port
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	address := config.Address
	if address == "" {
		address = config.Host
	}
	port := fmt.Sprint(config.Port)

	dialer := &net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, port))
	if err != nil {
		return nil, err
	}

	// The handshake has no context of its own, so bound it with a deadline.
	_ = conn.SetDeadline(time.Now().Add(config.Timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, net.JoinHostPort(config.Host, port), &ssh.ClientConfig{
		User:            config.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         config.Timeout,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	c.Client = ssh.NewClient(sshConn, chans, reqs)
	return c, nil
}

// Stream runs cmd in a new session, copying its standard output and error
// to stdout and stderr as data arrives. A non-zero remote exit is reported
// as *ssh.ExitError. Cancelling ctx closes the session.
func (c Client) Stream(ctx context.Context, cmd string, stdout, stderr io.Writer) error {
	sess, err := c.NewSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Stdout = stdout
	sess.Stderr = stderr
	if err := sess.Start(cmd); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- sess.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		sess.Close()
		<-done
		return ctx.Err()
	}
}

// Close client net connection.
func (c Client) Close() error {
	return c.Client.Close()
}
