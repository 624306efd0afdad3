package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	standardInputWriteFailedMessage   = "unable to deliver standard input"
	processTerminationFailedMessage   = "unable to terminate timed out process"
	standardStreamDrainErrorTemplate  = "unable to drain output of %s: %w"
	logFieldProcessIdentifierConstant = "pid"
)

// communicationOutcome joins the stream goroutines with the process exit status.
type communicationOutcome struct {
	drainError error
	waitError  error
}

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	logger *zap.Logger
}

// NewOSCommandRunner constructs a runner backed by os/exec. A nil logger discards diagnostics.
func NewOSCommandRunner(logger *zap.Logger) *OSCommandRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSCommandRunner{logger: logger}
}

// Run starts the command, writes its standard input while draining standard output and
// standard error concurrently, and waits for it to exit. The process is killed when the
// command timeout or the execution context expires first.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.Command(string(command.Name), commandArguments...)
	executable.SysProcAttr = backgroundProcessAttributes()

	standardInputWriter, standardInputError := executable.StdinPipe()
	if standardInputError != nil {
		return ExecutionResult{}, CommandStartError{Command: command, Cause: standardInputError}
	}
	standardOutputReader, standardOutputError := executable.StdoutPipe()
	if standardOutputError != nil {
		closeQuietly(standardInputWriter)
		return ExecutionResult{}, CommandStartError{Command: command, Cause: standardOutputError}
	}
	standardErrorReader, standardErrorError := executable.StderrPipe()
	if standardErrorError != nil {
		closeQuietly(standardInputWriter, standardOutputReader)
		return ExecutionResult{}, CommandStartError{Command: command, Cause: standardErrorError}
	}

	// Start closes every pipe it created when the launch fails.
	if startError := executable.Start(); startError != nil {
		return ExecutionResult{}, CommandStartError{Command: command, Cause: startError}
	}

	timeout := command.Details.EffectiveTimeout()
	processContext, cancelProcessContext := context.WithTimeout(executionContext, timeout)
	defer cancelProcessContext()

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer

	var streamGroup errgroup.Group
	streamGroup.Go(func() error {
		runner.writeStandardInput(command, executable, standardInputWriter)
		return nil
	})
	streamGroup.Go(func() error {
		_, copyError := io.Copy(&standardOutputBuffer, standardOutputReader)
		return copyError
	})
	streamGroup.Go(func() error {
		_, copyError := io.Copy(&standardErrorBuffer, standardErrorReader)
		return copyError
	})

	// Wait closes the pipes, so it must only run once every stream has been drained.
	completion := make(chan communicationOutcome, 1)
	go func() {
		drainError := streamGroup.Wait()
		waitError := executable.Wait()
		completion <- communicationOutcome{drainError: drainError, waitError: waitError}
	}()

	select {
	case outcome := <-completion:
		return runner.buildResult(command, outcome, standardOutputBuffer.String(), standardErrorBuffer.String())
	case <-processContext.Done():
		runner.terminate(executable, standardInputWriter, standardOutputReader, standardErrorReader)
		<-completion
		if contextError := executionContext.Err(); contextError != nil {
			return ExecutionResult{}, contextError
		}
		return ExecutionResult{}, CommandTimeoutError{Command: command, Timeout: timeout}
	}
}

func (runner *OSCommandRunner) writeStandardInput(command ShellCommand, executable *exec.Cmd, standardInputWriter io.WriteCloser) {
	_, writeError := standardInputWriter.Write(command.Details.StandardInput)
	closeError := standardInputWriter.Close()
	if failure := errors.Join(writeError, closeError); failure != nil {
		runner.logger.Warn(
			standardInputWriteFailedMessage,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Int(logFieldProcessIdentifierConstant, executable.Process.Pid),
			zap.Error(failure),
		)
	}
}

// terminate kills the process and closes the parent ends of its pipes so that streams
// inherited by grandchildren cannot keep the drain goroutines alive.
func (runner *OSCommandRunner) terminate(executable *exec.Cmd, streams ...io.Closer) {
	if killError := executable.Process.Kill(); killError != nil && !errors.Is(killError, os.ErrProcessDone) {
		runner.logger.Debug(
			processTerminationFailedMessage,
			zap.Int(logFieldProcessIdentifierConstant, executable.Process.Pid),
			zap.Error(killError),
		)
	}
	closeQuietly(streams...)
}

func (runner *OSCommandRunner) buildResult(command ShellCommand, outcome communicationOutcome, standardOutput string, standardError string) (ExecutionResult, error) {
	if outcome.waitError != nil {
		exitError := &exec.ExitError{}
		if errors.As(outcome.waitError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutput,
				StandardError:  standardError,
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, outcome.waitError
	}

	if outcome.drainError != nil {
		return ExecutionResult{}, fmt.Errorf(standardStreamDrainErrorTemplate, command.Name, outcome.drainError)
	}

	return ExecutionResult{
		StandardOutput: standardOutput,
		StandardError:  standardError,
		ExitCode:       0,
	}, nil
}

func closeQuietly(closers ...io.Closer) {
	for _, closer := range closers {
		if closer == nil {
			continue
		}
		_ = closer.Close()
	}
}
