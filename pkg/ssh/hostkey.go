// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package ssh

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/vmware/ssh-fanout/pkg/logging"
)

var logger = logging.For("ssh")

// HostKeyPolicy decides what happens to host keys missing from known_hosts.
type HostKeyPolicy string

const (
	// HostKeyStrict rejects hosts not already in known_hosts.
	HostKeyStrict HostKeyPolicy = "strict"
	// HostKeyAcceptNew records unknown hosts and rejects changed keys.
	HostKeyAcceptNew HostKeyPolicy = "accept-new"
	// HostKeyOff skips host key verification.
	HostKeyOff HostKeyPolicy = "off"
)

// ErrHostKeyMismatch is returned when a known host presents a different key.
var ErrHostKeyMismatch = errors.New("host key mismatch")

// knownHostsMu serializes reads and appends of known_hosts across the many
// connections a run opens at once.
var knownHostsMu sync.Mutex

// ParseHostKeyPolicy validates a policy name.
func ParseHostKeyPolicy(s string) (HostKeyPolicy, error) {
	switch p := HostKeyPolicy(s); p {
	case HostKeyStrict, HostKeyAcceptNew, HostKeyOff:
		return p, nil
	}
	return "", fmt.Errorf("unknown host key policy %q, want one of %s, %s, %s", s, HostKeyStrict, HostKeyAcceptNew, HostKeyOff)
}

// HostKeyCallback returns the host key callback implementing policy against
// the known_hosts file at knownHostsPath.
func HostKeyCallback(policy HostKeyPolicy, knownHostsPath string) (ssh.HostKeyCallback, error) {
	switch policy {
	case HostKeyOff:
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	case HostKeyStrict:
		cb, err := knownhosts.New(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
		return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			return describeKeyError(hostname, key, cb(hostname, remote, key))
		}, nil
	case HostKeyAcceptNew, "":
		return AcceptNewHostKeyCallback(knownHostsPath)
	}
	return nil, fmt.Errorf("unknown host key policy %q", policy)
}

// AcceptNewHostKeyCallback creates a host key callback that adds keys of
// unknown hosts to the known_hosts file and rejects keys that differ from
// the recorded ones.
//
// This callback is idempotent - if a host key is already in known_hosts,
// it will be validated without being written again.
func AcceptNewHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	// Create known_hosts file if it doesn't exist
	if err := ensureKnownHostsFile(knownHostsPath); err != nil {
		return nil, fmt.Errorf("failed to ensure known_hosts file exists: %w", err)
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		knownHostsMu.Lock()
		defer knownHostsMu.Unlock()

		// Create a fresh knownhosts callback for each connection attempt
		// This ensures it picks up keys added by other connections.
		currentKnownHostsCallback, err := knownhosts.New(knownHostsPath)
		if err != nil {
			return fmt.Errorf("failed to load known_hosts: %w", err)
		}

		// Create a version of the hostname that includes the port, for consistent lookup
		lookupHostname := hostname
		if tcpAddr, ok := remote.(*net.TCPAddr); ok {
			// If the hostname does not already contain a port, append the port from remote
			if _, _, splitErr := net.SplitHostPort(hostname); splitErr != nil {
				lookupHostname = net.JoinHostPort(hostname, strconv.Itoa(tcpAddr.Port))
			}
		}

		err = currentKnownHostsCallback(lookupHostname, remote, key)
		if err == nil {
			return nil
		}

		var keyErr *knownhosts.KeyError
		if !errors.As(err, &keyErr) || len(keyErr.Want) > 0 {
			// changed key or unreadable entry
			return describeKeyError(hostname, key, err)
		}

		if err := addHostKeyToKnownHosts(lookupHostname, remote, key, knownHostsPath); err != nil {
			return fmt.Errorf("failed to add host key to known_hosts: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"host":        hostname,
			"type":        key.Type(),
			"fingerprint": getHostKeyFingerprint(key),
		}).Warn("Permanently added host to the list of known hosts")
		return nil
	}, nil
}

// describeKeyError turns knownhosts errors into messages naming the host.
func describeKeyError(hostname string, key ssh.PublicKey, err error) error {
	if err == nil {
		return nil
	}
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		if len(keyErr.Want) > 0 {
			return fmt.Errorf("%w for %s: got %s %s, known_hosts line %d",
				ErrHostKeyMismatch, hostname, key.Type(), getHostKeyFingerprint(key), keyErr.Want[0].Line)
		}
		return fmt.Errorf("host %s is not in known_hosts: %w", hostname, err)
	}
	return err
}

// getHostKeyFingerprint returns the SHA256 fingerprint of the host key
// in the format used by OpenSSH (SHA256:...).
func getHostKeyFingerprint(key ssh.PublicKey) string {
	hash := sha256.Sum256(key.Marshal())
	return "SHA256:" + base64.RawStdEncoding.EncodeToString(hash[:])
}

// addHostKeyToKnownHosts adds a host key to the known_hosts file.
func addHostKeyToKnownHosts(hostname string, remote net.Addr, key ssh.PublicKey, knownHostsPath string) error {
	// Open known_hosts file in append mode
	file, err := os.OpenFile(knownHostsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open known_hosts file: %w", err)
	}
	defer file.Close()

	// Always add the provided hostname
	addresses := []string{hostname}

	// If remote is a TCP address, add its IP so lookups by address match too.
	if tcpAddr, ok := remote.(*net.TCPAddr); ok {
		ipAddr := net.JoinHostPort(tcpAddr.IP.String(), strconv.Itoa(tcpAddr.Port))
		name := hostname
		if h, _, splitErr := net.SplitHostPort(hostname); splitErr == nil {
			name = h
		}
		if tcpAddr.IP.String() != name {
			addresses = append(addresses, ipAddr)
		}
	}

	entry := knownhosts.Line(addresses, key)

	// knownhosts.Line doesn't include newline, so add it
	if _, err := file.WriteString(entry + "\n"); err != nil {
		return fmt.Errorf("failed to write to known_hosts file: %w", err)
	}

	return nil
}

// ensureKnownHostsFile ensures the known_hosts file and its directory exist.
func ensureKnownHostsFile(knownHostsPath string) error {
	// Get the directory path
	dir := filepath.Dir(knownHostsPath)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	// Create file if it doesn't exist (with proper permissions)
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		file, err := os.Create(knownHostsPath)
		if err != nil {
			return fmt.Errorf("failed to create known_hosts file: %w", err)
		}
		file.Close()

		// Set proper permissions (read/write for owner only)
		if err := os.Chmod(knownHostsPath, 0o600); err != nil {
			return fmt.Errorf("failed to set known_hosts file permissions: %w", err)
		}
	}

	return nil
}

