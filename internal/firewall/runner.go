package firewall

import (
	"fmt"
	"os/exec"
)

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes a command, folding its combined output into the error
// on failure.
func (ExecRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command %s failed: %w: %s", name, err, string(out))
	}
	return nil
}
