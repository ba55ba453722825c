// Package gitexec runs git (and other external tools) and hands back their
// output. All process handles are released on every path, including callers
// that stop reading a piped stream early.
package gitexec

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Output runs the command in repoDir and returns its stdout. Stderr is passed
// through to the user, the way git subcommands expect.
func Output(ctx context.Context, command string, repoDir string, args []string) ([]byte, error) {
	out := bytes.NewBuffer(nil)
	c := exec.CommandContext(ctx, command, args...)
	c.Dir = repoDir
	c.Stdout = out
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return nil, errors.Wrapf(err, "command %q failed", command+" "+strings.Join(args, " "))
	}
	return out.Bytes(), nil
}

// OutputQuiet is Output with stderr discarded, for probing commands such as
// git describe where failure is an answer, not an error to show the user.
func OutputQuiet(ctx context.Context, command string, repoDir string, args []string) ([]byte, error) {
	out := bytes.NewBuffer(nil)
	c := exec.CommandContext(ctx, command, args...)
	c.Dir = repoDir
	c.Stdout = out
	c.Stderr = io.Discard
	if err := c.Run(); err != nil {
		return nil, errors.Wrapf(err, "command %q failed", command+" "+strings.Join(args, " "))
	}
	return out.Bytes(), nil
}

// Pipe starts the command and returns its stdout as a stream. Closing the
// returned reader waits for the process to exit and reports its status, so a
// caller that read everything learns about non-zero exits at Close.
func Pipe(ctx context.Context, command string, repoDir string, args []string) (io.ReadCloser, error) {
	c := exec.CommandContext(ctx, command, args...)
	c.Dir = repoDir
	c.Stderr = os.Stderr
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "could not open stdout pipe")
	}
	if err := c.Start(); err != nil {
		return nil, errors.Wrapf(err, "command %q failed to start", command+" "+strings.Join(args, " "))
	}
	return &pipe{cmd: c, stdout: stdout, args: args}, nil
}

type pipe struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	args   []string
}

func (s *pipe) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *pipe) Close() error {
	// Closing stdout first unblocks the child if the caller stopped early.
	s.stdout.Close()
	if err := s.cmd.Wait(); err != nil {
		return errors.Wrapf(err, "command %q failed", s.cmd.Path+" "+strings.Join(s.args, " "))
	}
	return nil
}

// Interactive runs the command connected to the user's terminal. Used for the
// post-processing actions (git log, git diff, gitk).
func Interactive(ctx context.Context, command string, repoDir string, args []string) error {
	c := exec.CommandContext(ctx, command, args...)
	c.Dir = repoDir
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return errors.Wrapf(err, "command %q failed", command+" "+strings.Join(args, " "))
	}
	return nil
}
