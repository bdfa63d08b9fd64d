// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"

	"github.com/vmware/ssh-fanout/pkg/plan"
	"github.com/vmware/ssh-fanout/pkg/ssh"
)

const DefaultConfigFilename = "config.yaml"

// Config holds the settings a run can take from a file. YAML and JSON are
// both accepted.
type Config struct {
	User          string   `json:"user,omitempty"`
	Parallel      int      `json:"parallel,omitempty"`
	Port          int      `json:"port,omitempty"`
	IdentityFile  string   `json:"identity_file,omitempty"`
	Passphrase    string   `json:"passphrase,omitempty"`
	Password      string   `json:"password,omitempty"`
	KnownHosts    string   `json:"known_hosts,omitempty"`
	HostKeyPolicy string   `json:"host_key_policy,omitempty"`
	Nameserver    string   `json:"nameserver,omitempty"`
	DialTimeout   Duration `json:"dial_timeout,omitempty"`
}

// Duration reads "20s"-style strings as well as plain nanosecond numbers.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// DefaultPath returns ~/.config/ssh-fanout/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ssh-fanout", DefaultConfigFilename), nil
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{
		User:          currentUser(),
		Parallel:      plan.DefaultParallel,
		Port:          ssh.DefaultPort,
		HostKeyPolicy: string(ssh.HostKeyAcceptNew),
		DialTimeout:   Duration{ssh.DefaultTimeout},
	}
	if path, err := ssh.DefaultKnownHostsPath(); err == nil {
		cfg.KnownHosts = path
	}
	return cfg
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// ParseFile reads a config file.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}

	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s failed: %w", path, err)
	}
	return cfg, nil
}

// Load returns the defaults overlaid with the file at path. A missing file
// is only an error when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	fileCfg, err := ParseFile(expandHome(path))
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	cfg.Merge(fileCfg)
	return cfg, nil
}

// Merge copies every field set in other onto c.
func (c *Config) Merge(other *Config) {
	if other.User != "" {
		c.User = other.User
	}
	if other.Parallel != 0 {
		c.Parallel = other.Parallel
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.IdentityFile != "" {
		c.IdentityFile = expandHome(other.IdentityFile)
	}
	if other.Passphrase != "" {
		c.Passphrase = other.Passphrase
	}
	if other.Password != "" {
		c.Password = other.Password
	}
	if other.KnownHosts != "" {
		c.KnownHosts = expandHome(other.KnownHosts)
	}
	if other.HostKeyPolicy != "" {
		c.HostKeyPolicy = other.HostKeyPolicy
	}
	if other.Nameserver != "" {
		c.Nameserver = other.Nameserver
	}
	if other.DialTimeout.Duration != 0 {
		c.DialTimeout = other.DialTimeout
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.User == "" {
		result = multierror.Append(result, errors.New("user must be set"))
	}
	if c.Parallel < 1 {
		result = multierror.Append(result, fmt.Errorf("parallel must be at least 1, got %d", c.Parallel))
	}
	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := ssh.ParseHostKeyPolicy(c.HostKeyPolicy); err != nil {
		result = multierror.Append(result, err)
	}
	if c.DialTimeout.Duration < 0 {
		result = multierror.Append(result, fmt.Errorf("dial_timeout must not be negative, got %s", c.DialTimeout))
	}
	if c.IdentityFile != "" {
		if _, err := os.Stat(c.IdentityFile); err != nil {
			result = multierror.Append(result, fmt.Errorf("identity_file: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
