package cowsay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/cowtalk/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant  = "cowsay executor not configured"
	loggerNotConfiguredMessageConstant    = "cowsay logger not configured"
	messageTerminatorConstant             = "\n"
	startFailureTemplateConstant          = "Failed to start %s: %v"
	timeoutFailureTemplateConstant        = "%s timed out after %s"
	exitFailureTemplateConstant           = "%s exited with code %d"
	exitFailureWithDetailTemplateConstant = "%s exited with code %d: %s"
	emptyOutputFailureTemplateConstant    = "%s produced no output"
	cancellationFailureTemplateConstant   = "%s invocation cancelled: %v"
	unexpectedFailureTemplateConstant     = "Unexpected error: %v"
	invocationStartedLogMessageConstant   = "cowsay invocation started"
	invocationFinishedLogMessageConstant  = "cowsay invocation finished"
	invocationPanicLogMessageConstant     = "cowsay invocation panicked"
	logFieldInvocationIdentifierConstant  = "invocation_id"
	logFieldMessageLengthConstant         = "message_length"
	logFieldOutcomeConstant               = "outcome"
	logFieldReasonConstant                = "reason"
	logFieldPanicConstant                 = "panic"
	outcomeSuccessConstant                = "success"
	outcomeFailureConstant                = "failure"
)

var (
	// ErrExecutorNotConfigured indicates that a Service was created without a command executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates that a Service was created without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
)

// CommandExecutor runs shell commands and reports non-zero exits as execshell.CommandFailedError.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ServiceOptions selects the resolved executable, its extra arguments, and the per-call timeout.
type ServiceOptions struct {
	ExecutablePath string
	Arguments      []string
	Timeout        time.Duration
}

// Service performs one cowsay invocation per message.
type Service struct {
	logger         *zap.Logger
	executor       CommandExecutor
	executablePath string
	arguments      []string
	timeout        time.Duration
}

// NewService validates dependencies and constructs a Service.
func NewService(logger *zap.Logger, executor CommandExecutor, options ServiceOptions) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	executablePath := strings.TrimSpace(options.ExecutablePath)
	if len(executablePath) == 0 {
		return nil, ErrExecutableNotConfigured
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = execshell.DefaultCommandTimeout
	}

	return &Service{
		logger:         logger,
		executor:       executor,
		executablePath: executablePath,
		arguments:      append([]string{}, options.Arguments...),
		timeout:        timeout,
	}, nil
}

// Say sends message, followed by a line break, to the child's standard input and classifies
// the outcome. It never returns nil and never panics.
func (service *Service) Say(executionContext context.Context, message string) (invocationResult InvocationResult) {
	invocationLogger := service.logger.With(zap.String(logFieldInvocationIdentifierConstant, uuid.NewString()))

	defer func() {
		if recovered := recover(); recovered != nil {
			invocationLogger.Error(invocationPanicLogMessageConstant, zap.Any(logFieldPanicConstant, recovered))
			invocationResult = InvocationFailure{Reason: fmt.Sprintf(unexpectedFailureTemplateConstant, recovered)}
		}
	}()

	invocationLogger.Debug(invocationStartedLogMessageConstant, zap.Int(logFieldMessageLengthConstant, len(message)))

	command := execshell.ShellCommand{
		Name: execshell.CommandName(service.executablePath),
		Details: execshell.CommandDetails{
			Arguments:     append([]string{}, service.arguments...),
			StandardInput: []byte(message + messageTerminatorConstant),
			Timeout:       service.timeout,
		},
	}

	executionResult, executionError := service.executor.Execute(executionContext, command)
	invocationResult = service.classify(executionResult, executionError)

	switch typedResult := invocationResult.(type) {
	case InvocationSuccess:
		invocationLogger.Debug(invocationFinishedLogMessageConstant, zap.String(logFieldOutcomeConstant, outcomeSuccessConstant))
	case InvocationFailure:
		invocationLogger.Info(
			invocationFinishedLogMessageConstant,
			zap.String(logFieldOutcomeConstant, outcomeFailureConstant),
			zap.String(logFieldReasonConstant, typedResult.Reason),
		)
	}

	return invocationResult
}

func (service *Service) classify(executionResult execshell.ExecutionResult, executionError error) InvocationResult {
	if executionError != nil {
		return InvocationFailure{Reason: service.describeFailure(executionError)}
	}

	if len(strings.TrimSpace(executionResult.StandardOutput)) == 0 {
		return InvocationFailure{Reason: fmt.Sprintf(emptyOutputFailureTemplateConstant, service.executablePath)}
	}

	return InvocationSuccess{Output: executionResult.StandardOutput, ExitCode: executionResult.ExitCode}
}

func (service *Service) describeFailure(executionError error) string {
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		trimmedStandardError := strings.TrimSpace(commandFailure.Result.StandardError)
		if len(trimmedStandardError) == 0 {
			return fmt.Sprintf(exitFailureTemplateConstant, service.executablePath, commandFailure.Result.ExitCode)
		}
		return fmt.Sprintf(exitFailureWithDetailTemplateConstant, service.executablePath, commandFailure.Result.ExitCode, trimmedStandardError)
	}

	var startFailure execshell.CommandStartError
	if errors.As(executionError, &startFailure) {
		return fmt.Sprintf(startFailureTemplateConstant, service.executablePath, startFailure.Cause)
	}

	var timeoutFailure execshell.CommandTimeoutError
	if errors.As(executionError, &timeoutFailure) {
		return fmt.Sprintf(timeoutFailureTemplateConstant, service.executablePath, timeoutFailure.Timeout)
	}

	if errors.Is(executionError, context.Canceled) {
		return fmt.Sprintf(cancellationFailureTemplateConstant, service.executablePath, context.Canceled)
	}

	return fmt.Sprintf(unexpectedFailureTemplateConstant, executionError)
}
