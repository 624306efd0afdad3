package cowsay_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/cowtalk/internal/cowsay"
	"github.com/temirov/cowtalk/internal/execshell"
)

const (
	testExecutablePathConstant       = "/usr/games/cowsay"
	testMessageConstant              = "hello cow"
	testCowOutputConstant            = " ___________\n< hello cow >\n -----------\n"
	testShortTimeoutConstant         = 250 * time.Millisecond
	testScriptTimeoutConstant        = 4 * time.Second
	testFakeCowsayScriptNameConstant = "cowsay"
)

type stubCommandExecutor struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	panicValue       any
	recordedCommands []execshell.ShellCommand
}

func (executor *stubCommandExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, command)
	if executor.panicValue != nil {
		panic(executor.panicValue)
	}
	return executor.executionResult, executor.executionError
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		executor      cowsay.CommandExecutor
		options       cowsay.ServiceOptions
		expectedError error
	}{
		{
			name:          "missing_logger",
			executor:      &stubCommandExecutor{},
			options:       cowsay.ServiceOptions{ExecutablePath: testExecutablePathConstant},
			expectedError: cowsay.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_executor",
			logger:        zap.NewNop(),
			options:       cowsay.ServiceOptions{ExecutablePath: testExecutablePathConstant},
			expectedError: cowsay.ErrExecutorNotConfigured,
		},
		{
			name:          "missing_executable",
			logger:        zap.NewNop(),
			executor:      &stubCommandExecutor{},
			options:       cowsay.ServiceOptions{ExecutablePath: "  "},
			expectedError: cowsay.ErrExecutableNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, creationError := cowsay.NewService(testCase.logger, testCase.executor, testCase.options)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, service)
		})
	}
}

func TestServiceSayClassifiesOutcomes(testInstance *testing.T) {
	cowsayCommand := execshell.ShellCommand{Name: execshell.CommandName(testExecutablePathConstant)}

	testCases := []struct {
		name           string
		executor       *stubCommandExecutor
		expectedResult cowsay.InvocationResult
	}{
		{
			name:           "success_keeps_output_verbatim",
			executor:       &stubCommandExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testCowOutputConstant}},
			expectedResult: cowsay.InvocationSuccess{Output: testCowOutputConstant, ExitCode: 0},
		},
		{
			name:           "zero_exit_without_output",
			executor:       &stubCommandExecutor{executionResult: execshell.ExecutionResult{StandardOutput: "", ExitCode: 0}},
			expectedResult: cowsay.InvocationFailure{Reason: testExecutablePathConstant + " produced no output"},
		},
		{
			name:           "zero_exit_with_whitespace_output",
			executor:       &stubCommandExecutor{executionResult: execshell.ExecutionResult{StandardOutput: " \n\t\n"}},
			expectedResult: cowsay.InvocationFailure{Reason: testExecutablePathConstant + " produced no output"},
		},
		{
			name: "non_zero_exit_with_standard_error",
			executor: &stubCommandExecutor{executionError: execshell.CommandFailedError{
				Command: cowsayCommand,
				Result:  execshell.ExecutionResult{ExitCode: 2, StandardError: "\n  cowsay: Could not find tux cowfile!  \n"},
			}},
			expectedResult: cowsay.InvocationFailure{Reason: testExecutablePathConstant + " exited with code 2: cowsay: Could not find tux cowfile!"},
		},
		{
			name: "non_zero_exit_without_standard_error",
			executor: &stubCommandExecutor{executionError: execshell.CommandFailedError{
				Command: cowsayCommand,
				Result:  execshell.ExecutionResult{ExitCode: 1},
			}},
			expectedResult: cowsay.InvocationFailure{Reason: testExecutablePathConstant + " exited with code 1"},
		},
		{
			name: "start_failure",
			executor: &stubCommandExecutor{executionError: execshell.CommandExecutionError{
				Command: cowsayCommand,
				Cause:   execshell.CommandStartError{Command: cowsayCommand, Cause: os.ErrPermission},
			}},
			expectedResult: cowsay.InvocationFailure{Reason: "Failed to start " + testExecutablePathConstant + ": permission denied"},
		},
		{
			name: "timeout",
			executor: &stubCommandExecutor{executionError: execshell.CommandExecutionError{
				Command: cowsayCommand,
				Cause:   execshell.CommandTimeoutError{Command: cowsayCommand, Timeout: 5 * time.Second},
			}},
			expectedResult: cowsay.InvocationFailure{Reason: testExecutablePathConstant + " timed out after 5s"},
		},
		{
			name: "caller_cancellation",
			executor: &stubCommandExecutor{executionError: execshell.CommandExecutionError{
				Command: cowsayCommand,
				Cause:   context.Canceled,
			}},
			expectedResult: cowsay.InvocationFailure{Reason: testExecutablePathConstant + " invocation cancelled: context canceled"},
		},
		{
			name:           "unexpected_error",
			executor:       &stubCommandExecutor{executionError: errors.New("disk on fire")},
			expectedResult: cowsay.InvocationFailure{Reason: "Unexpected error: disk on fire"},
		},
		{
			name:           "recovered_panic",
			executor:       &stubCommandExecutor{panicValue: "executor exploded"},
			expectedResult: cowsay.InvocationFailure{Reason: "Unexpected error: executor exploded"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, creationError := cowsay.NewService(zap.NewNop(), testCase.executor, cowsay.ServiceOptions{
				ExecutablePath: testExecutablePathConstant,
				Arguments:      []string{"-f", "tux"},
				Timeout:        testShortTimeoutConstant,
			})
			require.NoError(testInstance, creationError)

			invocationResult := service.Say(context.Background(), testMessageConstant)

			require.Equal(testInstance, testCase.expectedResult, invocationResult)
			require.Len(testInstance, testCase.executor.recordedCommands, 1)

			recordedCommand := testCase.executor.recordedCommands[0]
			require.Equal(testInstance, execshell.CommandName(testExecutablePathConstant), recordedCommand.Name)
			require.Equal(testInstance, []string{"-f", "tux"}, recordedCommand.Details.Arguments)
			require.Equal(testInstance, testMessageConstant+"\n", string(recordedCommand.Details.StandardInput))
			require.Equal(testInstance, testShortTimeoutConstant, recordedCommand.Details.Timeout)
		})
	}
}

func TestServiceSayIsIndependentAcrossCalls(testInstance *testing.T) {
	executor := &stubCommandExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testCowOutputConstant}}
	service, creationError := cowsay.NewService(zap.NewNop(), executor, cowsay.ServiceOptions{ExecutablePath: testExecutablePathConstant})
	require.NoError(testInstance, creationError)

	firstResult := service.Say(context.Background(), testMessageConstant)
	secondResult := service.Say(context.Background(), testMessageConstant)

	require.Equal(testInstance, firstResult, secondResult)
	require.Len(testInstance, executor.recordedCommands, 2)
	require.Equal(testInstance, executor.recordedCommands[0], executor.recordedCommands[1])
	require.Equal(testInstance, execshell.DefaultCommandTimeout, executor.recordedCommands[0].Details.Timeout)
}

func TestServiceSayTagsLogsWithInvocationIdentifier(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	executor := &stubCommandExecutor{executionError: errors.New("boom")}
	service, creationError := cowsay.NewService(zap.New(observerCore), executor, cowsay.ServiceOptions{ExecutablePath: testExecutablePathConstant})
	require.NoError(testInstance, creationError)

	service.Say(context.Background(), testMessageConstant)
	service.Say(context.Background(), testMessageConstant)

	entries := observedLogs.All()
	require.Len(testInstance, entries, 4)

	identifiers := map[string]struct{}{}
	for _, entry := range entries {
		identifier, present := entry.ContextMap()["invocation_id"]
		require.True(testInstance, present)
		identifiers[identifier.(string)] = struct{}{}
	}
	require.Len(testInstance, identifiers, 2)
}

func writeFakeCowsay(testInstance *testing.T, scriptBody string) string {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skipf("sh is not available: %v", lookupError)
	}

	scriptPath := filepath.Join(testInstance.TempDir(), testFakeCowsayScriptNameConstant)
	scriptContent := "#!/bin/sh\n" + scriptBody + "\n"
	require.NoError(testInstance, os.WriteFile(scriptPath, []byte(scriptContent), 0o755))
	return scriptPath
}

func TestServiceSayWithRealProcesses(testInstance *testing.T) {
	testCases := []struct {
		name          string
		scriptBody    string
		timeout       time.Duration
		message       string
		assertOutcome func(testInstance *testing.T, scriptPath string, invocationResult cowsay.InvocationResult)
	}{
		{
			name:       "frames_message",
			scriptBody: `read line; printf ' <%s>\n' "$line"`,
			timeout:    testScriptTimeoutConstant,
			message:    testMessageConstant,
			assertOutcome: func(testInstance *testing.T, scriptPath string, invocationResult cowsay.InvocationResult) {
				require.Equal(testInstance, cowsay.InvocationSuccess{Output: " <hello cow>\n", ExitCode: 0}, invocationResult)
			},
		},
		{
			name:       "silent_success",
			scriptBody: `cat >/dev/null; exit 0`,
			timeout:    testScriptTimeoutConstant,
			message:    testMessageConstant,
			assertOutcome: func(testInstance *testing.T, scriptPath string, invocationResult cowsay.InvocationResult) {
				require.Equal(testInstance, cowsay.InvocationFailure{Reason: scriptPath + " produced no output"}, invocationResult)
			},
		},
		{
			name:       "failing_child",
			scriptBody: `cat >/dev/null; echo '  the cow is sleeping  ' >&2; exit 4`,
			timeout:    testScriptTimeoutConstant,
			message:    testMessageConstant,
			assertOutcome: func(testInstance *testing.T, scriptPath string, invocationResult cowsay.InvocationResult) {
				require.Equal(testInstance, cowsay.InvocationFailure{Reason: scriptPath + " exited with code 4: the cow is sleeping"}, invocationResult)
			},
		},
		{
			name:       "hung_child",
			scriptBody: `exec sleep 30`,
			timeout:    testShortTimeoutConstant,
			message:    testMessageConstant,
			assertOutcome: func(testInstance *testing.T, scriptPath string, invocationResult cowsay.InvocationResult) {
				require.Equal(testInstance, cowsay.InvocationFailure{Reason: scriptPath + " timed out after 250ms"}, invocationResult)
			},
		},
		{
			name:       "large_echo",
			scriptBody: `cat`,
			timeout:    testScriptTimeoutConstant,
			message:    strings.Repeat("moo ", 1<<18),
			assertOutcome: func(testInstance *testing.T, scriptPath string, invocationResult cowsay.InvocationResult) {
				successResult, isSuccess := invocationResult.(cowsay.InvocationSuccess)
				require.True(testInstance, isSuccess)
				require.Equal(testInstance, strings.Repeat("moo ", 1<<18)+"\n", successResult.Output)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			scriptPath := writeFakeCowsay(testInstance, testCase.scriptBody)

			logger := zap.NewNop()
			shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(logger))
			require.NoError(testInstance, executorError)

			service, serviceError := cowsay.NewService(logger, shellExecutor, cowsay.ServiceOptions{
				ExecutablePath: scriptPath,
				Timeout:        testCase.timeout,
			})
			require.NoError(testInstance, serviceError)

			startTime := time.Now()
			invocationResult := service.Say(context.Background(), testCase.message)
			require.Less(testInstance, time.Since(startTime), testScriptTimeoutConstant+time.Second)

			testCase.assertOutcome(testInstance, scriptPath, invocationResult)
		})
	}
}
