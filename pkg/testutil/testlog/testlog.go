// Package testlog sets up logging for package tests.
package testlog

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/logging"
)

// Start applies the test logging profile and tags the log with the test name
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logrus.Debugf("test=%s", t.Name())
}
