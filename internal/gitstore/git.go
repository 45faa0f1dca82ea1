package gitstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// gitError is a failed git invocation with its captured stderr. Stderr is
// kept separately so callers can classify the failure (a rejected push looks
// different from an unreachable remote) without parsing the message.
type gitError struct {
	args   []string
	stderr string
	err    error
}

func (e *gitError) Error() string {
	return fmt.Sprintf("git %s: %v (stderr: %s)", strings.Join(e.args, " "), e.err, e.stderr)
}

func (e *gitError) Unwrap() error { return e.err }

// nonFastForward reports whether err is a push rejected because the remote
// ref advanced. These are the markers git prints for a fast-forward refusal;
// anything else (auth, network, missing remote) is not a conflict.
func nonFastForward(err error) bool {
	var ge *gitError
	if !errors.As(err, &ge) {
		return false
	}
	for _, marker := range []string{"non-fast-forward", "fetch first", "[rejected]"} {
		if strings.Contains(ge.stderr, marker) {
			return true
		}
	}
	return false
}

// runGit executes a bare git command (no working copy yet, e.g. clone).
// extraEnv is appended to the inherited environment. Terminal prompts are
// disabled: an auth problem must fail, not hang a batch job.
func runGit(ctx context.Context, extraEnv []string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", args...)
	command.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	command.Env = append(command.Env, extraEnv...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", &gitError{args: args, stderr: strings.TrimSpace(stderr.String()), err: err}
	}
	return stdout.String(), nil
}

// runner executes git commands against one working copy, always via
// "git -C <dir>" so the process working directory never matters.
type runner struct {
	dir string
	env []string
}

func (r *runner) run(ctx context.Context, args ...string) (string, error) {
	return runGit(ctx, r.env, append([]string{"-C", r.dir}, args...)...)
}
