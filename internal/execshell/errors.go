package execshell

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandStartFailureTemplateConstant       = "failed to start %s: %v"
	commandTimeoutTemplateConstant            = "%s timed out after %s"
)

var (
	// ErrLoggerNotConfigured indicates that a ShellExecutor was created without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates that a ShellExecutor was created without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command, its exit code, and its trimmed standard error.
func (failure CommandFailedError) Error() string {
	return CommandMessageFormatter{}.BuildFailureMessage(failure.Command, failure.Result)
}

// CommandExecutionError reports a command that could not produce an ExecutionResult.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the command and the underlying cause.
func (failure CommandExecutionError) Error() string {
	return CommandMessageFormatter{}.BuildExecutionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandStartError reports that the operating system refused to launch the command.
type CommandStartError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the command and the launch failure.
func (failure CommandStartError) Error() string {
	return fmt.Sprintf(commandStartFailureTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the launch failure.
func (failure CommandStartError) Unwrap() error {
	return failure.Cause
}

// CommandTimeoutError reports a command that was killed after exceeding its time budget.
type CommandTimeoutError struct {
	Command ShellCommand
	Timeout time.Duration
}

// Error describes the command and the exceeded budget.
func (failure CommandTimeoutError) Error() string {
	return fmt.Sprintf(commandTimeoutTemplateConstant, failure.Command.Name, failure.Timeout)
}

// Unwrap lets callers match timeouts with errors.Is(err, context.DeadlineExceeded).
func (failure CommandTimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}
