package account

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ShellRunner runs commands through /bin/sh, the way refresh commands are
// written in configuration files.
type ShellRunner struct {
	Shell string
	Log   logrus.FieldLogger
}

// FirstLine starts command, reads its first output line and waits for it
// to exit. The remaining output is discarded. A non-zero exit status is
// logged but not treated as a failure when a line was read.
func (s ShellRunner) FirstLine(ctx context.Context, command string) (string, error) {
	shell := s.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting %q: %w", command, err)
	}

	line, readErr := bufio.NewReader(stdout).ReadString('\n')
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if readErr != nil && readErr != io.EOF {
		return "", fmt.Errorf("reading output of %q: %w", command, readErr)
	}
	if waitErr != nil {
		log := s.Log
		if log == nil {
			log = logrus.StandardLogger()
		}
		log.WithError(waitErr).Warn("refresh command exited with an error")
	}

	return strings.TrimRight(line, "\r\n"), nil
}
