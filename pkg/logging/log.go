// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the default log level when --verbose is not given.
const EnvLogLevel = "SSH_FANOUT_LOGLEVEL"

var log = logrus.New()

func init() {
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	}
	log.Level = levelFromEnv()
}

// Get returns the process-wide logger.
func Get() *logrus.Logger {
	return log
}

// For returns a logger tagged with the given component prefix.
func For(prefix string) *logrus.Entry {
	return log.WithField("prefix", prefix)
}

// SetVerbose switches the logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		log.Level = logrus.DebugLevel
		return
	}
	log.Level = levelFromEnv()
}

func levelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv(EnvLogLevel))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
