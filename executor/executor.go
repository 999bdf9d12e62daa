// Package executor runs external programs and captures their output and exit
// status. bootsig uses it to drive the compiled command as a real child
// process, where exit codes and stderr reporting can be observed end to end.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Result holds the output and exit status of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Options configures a single execution.
type Options struct {
	// WorkingDir is the child's working directory; empty means the caller's.
	WorkingDir string

	// Env is appended to the caller's environment.
	Env map[string]string
}

// Option is a function that modifies Options.
type Option func(*Options)

// Command is a program invocation that can be executed repeatedly.
type Command struct {
	program string
	args    []string
}

// New creates a Command for program with args.
func New(program string, args ...string) *Command {
	return &Command{program: program, args: args}
}

// Execute runs the command and waits for it to exit.
//
// A non-zero exit is not an error: it is reported through Result.ExitCode and
// Result.Err. The returned error is only set when the process could not be
// run at all (missing binary, canceled context, ...), in which case ExitCode
// is -1.
func (c *Command) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := &Options{Env: make(map[string]string)}
	for _, opt := range opts {
		opt(options)
	}

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	cmd.Dir = options.WorkingDir
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("run %s: %w", c.program, err)
	}
	return result, nil
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}
