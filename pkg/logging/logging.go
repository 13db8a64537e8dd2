// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment overrides applied on top of a profile
const (
	EnvLogLevel  = "ZENTALK_LOG_LEVEL"
	EnvLogFormat = "ZENTALK_LOG_FORMAT"
)

// Profile selects default level and format
type Profile int

const (
	// ProfileRuntime logs at info with full timestamps
	ProfileRuntime Profile = iota
	// ProfileTest logs at debug without timestamps
	ProfileTest
)

var configureOnce sync.Once

// ConfigureRuntime applies the runtime profile
func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

// ConfigureTests applies the test profile
func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure applies profile once per process; later calls do nothing
func Configure(profile Profile) {
	configureOnce.Do(func() {
		apply(logrus.StandardLogger(), profile, os.Getenv)
	})
}

func apply(logger *logrus.Logger, profile Profile, getenv func(string) string) {
	level, formatter := defaults(profile)

	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		level = lvl
	}
	if f, ok := parseFormat(getenv(EnvLogFormat), profile); ok {
		formatter = f
	}

	logger.SetLevel(level)
	logger.SetFormatter(formatter)
}

func defaults(profile Profile) (logrus.Level, logrus.Formatter) {
	switch profile {
	case ProfileTest:
		return logrus.DebugLevel, &logrus.TextFormatter{DisableTimestamp: true}
	default:
		return logrus.InfoLevel, &logrus.TextFormatter{FullTimestamp: true}
	}
}

func parseLevel(raw string) (logrus.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return logrus.InfoLevel, false
	case "trace":
		return logrus.TraceLevel, true
	case "debug":
		return logrus.DebugLevel, true
	case "info":
		return logrus.InfoLevel, true
	case "warn", "warning":
		return logrus.WarnLevel, true
	case "error":
		return logrus.ErrorLevel, true
	case "disabled", "off", "none":
		return logrus.PanicLevel, true
	default:
		return logrus.InfoLevel, false
	}
}

func parseFormat(raw string, profile Profile) (logrus.Formatter, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return &logrus.JSONFormatter{DisableTimestamp: profile == ProfileTest}, true
	case "text":
		_, f := defaults(profile)
		return f, true
	default:
		return nil, false
	}
}
