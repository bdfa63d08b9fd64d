// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package hosts

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/vmware/ssh-fanout/pkg/logging"
)

var logger = logging.For("hosts")

// ReadKnownHosts returns the host names listed in a known_hosts file, in file order.
func ReadKnownHosts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read known_hosts failed: %w", err)
	}
	defer f.Close()

	return ParseKnownHosts(f)
}

// ParseKnownHosts returns the host names of every plain entry read from r.
// Every name of a comma separated list counts, "[host]:port" yields host.
// Hashed names, negations, wildcard patterns and marker lines
// (@cert-authority, @revoked) are skipped, as are lines that do not parse.
func ParseKnownHosts(r io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		marker, entries, _, _, _, err := ssh.ParseKnownHosts(line)
		if err != nil {
			logger.Debugf("skipping known_hosts line %d: %v", lineNum, err)
			continue
		}
		if marker != "" {
			continue
		}
		for _, entry := range entries {
			if name, ok := knownHostName(entry); ok {
				names = append(names, name)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan known_hosts failed: %w", err)
	}

	return names, nil
}

func knownHostName(entry string) (string, bool) {
	if entry == "" || strings.HasPrefix(entry, "|") || strings.HasPrefix(entry, "!") {
		return "", false
	}
	if strings.ContainsAny(entry, "*?") {
		return "", false
	}
	if strings.HasPrefix(entry, "[") {
		host, _, err := net.SplitHostPort(entry)
		if err != nil {
			return "", false
		}
		return host, true
	}
	return entry, true
}
