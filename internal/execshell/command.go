package execshell

import (
	"context"
	"time"
)

const (
	cowsayCommandNameConstant = "cowsay"
	defaultCommandTimeout     = 5 * time.Second
)

// CommandName identifies the executable a ShellCommand runs.
type CommandName string

// CommandCowsay is the executable name used when no explicit path is configured.
const CommandCowsay CommandName = CommandName(cowsayCommandNameConstant)

// DefaultCommandTimeout bounds a command when CommandDetails.Timeout is not positive.
const DefaultCommandTimeout = defaultCommandTimeout

// CommandDetails describes arguments, input, and limits for a command invocation.
// The child inherits the working directory and environment of cowtalk.
type CommandDetails struct {
	Arguments     []string
	StandardInput []byte
	Timeout       time.Duration
}

// ShellCommand combines a CommandName with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a ShellCommand to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// EffectiveTimeout returns the configured timeout or DefaultCommandTimeout when unset.
func (details CommandDetails) EffectiveTimeout() time.Duration {
	if details.Timeout <= 0 {
		return DefaultCommandTimeout
	}
	return details.Timeout
}
