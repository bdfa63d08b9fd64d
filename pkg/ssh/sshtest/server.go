// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

// Package sshtest runs a small in-process SSH server for tests.
//
// The server understands a tiny command language, with statements separated
// by ';':
//
//	echo ARGS   write ARGS and a newline to stdout
//	warn ARGS   write ARGS and a newline to stderr
//	sleep DUR   pause for a time.ParseDuration duration
//	exit N      stop and report exit status N
//	noexit      stop without reporting any exit status
//
// Anything else is echoed back as "HI, i am handled" with status 0.
package sshtest

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/vmware/ssh-fanout/pkg/logging"
)

var logger = logging.For("sshtest")

// Server represents a local server instance
type Server struct {
	user             string
	password         string
	authorized       [][]byte
	hostKey          ssh.Signer
	listener         net.Listener
	config           *ssh.ServerConfig
	running          bool
	mu               sync.Mutex
	stopChan         chan struct{}
	executedCommands []string
}

// NewServer creates a server accepting user with password, or with any of
// the authorized public keys. It presents a freshly generated host key.
func NewServer(user, password string, authorized ...ssh.PublicKey) (*Server, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate host key: %w", err)
	}
	hostKey, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create host key signer: %w", err)
	}

	server := &Server{
		user:     user,
		password: password,
		hostKey:  hostKey,
		stopChan: make(chan struct{}),
	}
	for _, k := range authorized {
		server.authorized = append(server.authorized, k.Marshal())
	}

	server.config = &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == server.user && server.password != "" && string(pass) == server.password {
				return nil, nil
			}
			return nil, fmt.Errorf("authentication failed")
		},
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if c.User() != server.user {
				return nil, fmt.Errorf("public key rejected for %q", c.User())
			}
			for _, k := range server.authorized {
				if bytes.Equal(k, key.Marshal()) {
					return nil, nil
				}
			}
			return nil, fmt.Errorf("unknown public key for %q", c.User())
		},
	}
	server.config.AddHostKey(hostKey)

	return server, nil
}

// HostKey returns the public half of the server's host key.
func (s *Server) HostKey() ssh.PublicKey {
	return s.hostKey.PublicKey()
}

// Start listens on a random loopback port.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.running = true

	// Handle connections in a goroutine
	go s.acceptConnections()

	logger.Debugf("SSH server started on %s", listener.Addr())
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("server is not running")
	}

	close(s.stopChan)
	s.running = false

	return s.listener.Close()
}

// Host returns the address the server listens on.
func (s *Server) Host() string {
	return s.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the server port
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// ExecutedCommands returns every command received so far.
func (s *Server) ExecutedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executedCommands...)
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// acceptConnections handles incoming connections
func (s *Server) acceptConnections() {
	for {
		select {
		case <-s.stopChan:
			return
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				if !s.IsRunning() {
					return
				}
				logger.Debugf("Failed to accept connection: %v", err)
				continue
			}

			go s.handleConnection(conn)
		}
	}
}

// handleConnection handles a single SSH connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	// Perform SSH handshake
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		logger.Debugf("Failed to establish SSH connection: %v", err)
		return
	}
	defer sshConn.Close()

	// Discard all global requests
	go ssh.DiscardRequests(reqs)

	// Handle channels
	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			logger.Debugf("Failed to accept channel: %v", err)
			continue
		}

		go s.handleChannel(channel, requests)
	}
}

// handleChannel handles an SSH channel for Exec
func (s *Server) handleChannel(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	for req := range requests {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}

		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			continue
		}
		command := payload.Command

		// Consume stdin to avoid blocking/errors if client writes to it
		go func() { _, _ = io.Copy(io.Discard, channel) }()

		s.mu.Lock()
		s.executedCommands = append(s.executedCommands, command)
		s.mu.Unlock()

		_ = req.Reply(true, nil)

		code, sendStatus := runScript(command, channel, channel.Stderr())
		if sendStatus {
			status := struct{ Status uint32 }{uint32(code)}
			_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(&status))
		}
		return // close session after execution
	}
}

func runScript(command string, stdout, stderr io.Writer) (int, bool) {
	known := false
	for _, stmt := range strings.Split(command, ";") {
		verb, arg, _ := strings.Cut(strings.TrimSpace(stmt), " ")
		switch verb {
		case "echo":
			known = true
			_, _ = io.WriteString(stdout, arg+"\n")
		case "warn":
			known = true
			_, _ = io.WriteString(stderr, arg+"\n")
		case "sleep":
			known = true
			d, _ := time.ParseDuration(arg)
			time.Sleep(d)
		case "exit":
			code, _ := strconv.Atoi(arg)
			return code, true
		case "noexit":
			return 0, false
		}
	}
	if !known {
		_, _ = io.WriteString(stdout, "HI, i am handled\n")
	}
	return 0, true
}
