package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   logrus.Level
		wantOK bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, true},
		{" WARNING ", logrus.WarnLevel, true},
		{"off", logrus.PanicLevel, true},
		{"loud", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseLevel(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyProfiles(t *testing.T) {
	noEnv := func(string) string { return "" }

	logger := logrus.New()
	apply(logger, ProfileTest, noEnv)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger = logrus.New()
	apply(logger, ProfileRuntime, noEnv)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:  "error",
		EnvLogFormat: "json",
	}

	logger := logrus.New()
	apply(logger, ProfileRuntime, func(k string) string { return env[k] })

	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestConfigureAppliesOnce(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")

	ConfigureTests()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	// Later profiles are ignored
	ConfigureRuntime()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
