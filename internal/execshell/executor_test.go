package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/cowtalk/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testExecutionTimeoutCaseNameConstant         = "runner_timeout"
	testCommandArgumentConstant                  = "-f"
	testCommandArgumentValueConstant             = "tux"
	testStandardInputConstant                    = "hello\n"
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	events []string
}

func (eventObserver *recordingEventObserver) CommandStarted(execshell.ShellCommand) {
	eventObserver.events = append(eventObserver.events, "started")
}

func (eventObserver *recordingEventObserver) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {
	eventObserver.events = append(eventObserver.events, "completed")
}

func (eventObserver *recordingEventObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	eventObserver.events = append(eventObserver.events, "execution_failed")
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedEvents   []string
		expectedLogCount int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: " _____\n< hello >\n",
				ExitCode:       0,
			},
			expectedEvents:   []string{"started", "completed"},
			expectedLogCount: 0,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedEvents:   []string{"started", "completed"},
			expectedLogCount: 0,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedEvents:   []string{"started", "execution_failed"},
			expectedLogCount: 0,
		},
		{
			name:             testExecutionTimeoutCaseNameConstant,
			runnerError:      execshell.CommandTimeoutError{Command: execshell.ShellCommand{Name: execshell.CommandCowsay}, Timeout: execshell.DefaultCommandTimeout},
			expectErrorType:  execshell.CommandExecutionError{},
			expectedEvents:   []string{"started", "execution_failed"},
			expectedLogCount: 0,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}
			eventObserver := &recordingEventObserver{}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner, eventObserver, nil)
			require.NoError(testInstance, creationError)

			command := execshell.ShellCommand{
				Name: execshell.CommandCowsay,
				Details: execshell.CommandDetails{
					Arguments:     []string{testCommandArgumentConstant, testCommandArgumentValueConstant},
					StandardInput: []byte(testStandardInputConstant),
				},
			}
			executionResult, executionError := shellExecutor.Execute(context.Background(), command)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, command, recordingRunner.recordedCommands[0])
			require.Equal(testInstance, testCase.expectedEvents, eventObserver.events)
			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
		})
	}
}

func TestShellExecutorLogsEventsWhenNoObserverIsRegistered(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectedMessages []string
	}{
		{
			name:             testExecutionSuccessCaseNameConstant,
			runnerResult:     execshell.ExecutionResult{StandardOutput: "< hello >\n"},
			expectedMessages: []string{"command started", "command completed"},
		},
		{
			name:             testExecutionFailureCaseNameConstant,
			runnerResult:     execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 1},
			expectedMessages: []string{"command started", "command exited with non-zero status"},
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectedMessages: []string{"command started", "command execution failed"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner, nil)
			require.NoError(testInstance, creationError)

			_, _ = shellExecutor.Execute(context.Background(), execshell.ShellCommand{
				Name:    execshell.CommandCowsay,
				Details: execshell.CommandDetails{StandardInput: []byte(testStandardInputConstant)},
			})

			loggedMessages := make([]string, 0, observerLogs.Len())
			for _, entry := range observerLogs.All() {
				require.Equal(testInstance, zap.DebugLevel, entry.Level)
				require.Equal(testInstance, string(execshell.CommandCowsay), entry.ContextMap()["command_name"])
				loggedMessages = append(loggedMessages, entry.Message)
			}
			require.Equal(testInstance, testCase.expectedMessages, loggedMessages)
		})
	}
}

func TestShellExecutorPreservesTypedRunnerErrors(testInstance *testing.T) {
	timeoutFailure := execshell.CommandTimeoutError{Command: execshell.ShellCommand{Name: execshell.CommandCowsay}, Timeout: execshell.DefaultCommandTimeout}
	recordingRunner := &recordingCommandRunner{executionError: timeoutFailure}

	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.Execute(context.Background(), execshell.ShellCommand{Name: execshell.CommandCowsay})

	var observedTimeout execshell.CommandTimeoutError
	require.ErrorAs(testInstance, executionError, &observedTimeout)
	require.Equal(testInstance, execshell.DefaultCommandTimeout, observedTimeout.Timeout)
	require.ErrorIs(testInstance, executionError, context.DeadlineExceeded)
	require.Contains(testInstance, executionError.Error(), "cowsay timed out after 5s")
}

func TestCommandFailedErrorIncludesExitCodeAndTrimmedStandardError(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandCowsay},
		Result:  execshell.ExecutionResult{ExitCode: 2, StandardError: "  unknown option\n"},
	}

	require.Equal(testInstance, "cowsay failed with exit code 2: unknown option", failure.Error())
}
