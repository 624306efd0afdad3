package execshell

import (
	"context"

	"go.uber.org/zap"
)

// ShellExecutor runs commands through a CommandRunner and classifies their outcomes.
type ShellExecutor struct {
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor validates its collaborators and constructs a ShellExecutor. Lifecycle
// events go to the given observers; without any, they are logged as structured debug entries.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	registeredObservers := newCompositeCommandEventObserver(observers)
	if len(registeredObservers) == 0 {
		registeredObservers = compositeCommandEventObserver{newStructuredCommandEventLogger(logger)}
	}

	return &ShellExecutor{runner: runner, observer: registeredObservers}, nil
}

// Execute runs the command. A non-zero exit code yields CommandFailedError alongside the
// captured result; runner failures yield CommandExecutionError and an empty result.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}
	return executionResult, nil
}
