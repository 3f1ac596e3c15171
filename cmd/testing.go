package cmd

import (
	"bytes"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// testMu serialises TestExecute, parallel tests can share one command and with it its flags.
var testMu sync.Mutex

// TestExecute runs command with args and returns everything it printed to its out and err writers.
// Colours are turned off, so the output can be compared as plain text.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	testMu.Lock()
	defer testMu.Unlock()

	noColor := color.NoColor
	color.NoColor = true

	out := &bytes.Buffer{}
	command.SetOut(out)
	command.SetErr(out)
	command.SetArgs(args)

	defer func() {
		color.NoColor = noColor

		command.SetOut(nil)
		command.SetErr(nil)
		command.SetArgs(nil)
	}()

	_, err := command.ExecuteC()

	return out.String(), err
}
