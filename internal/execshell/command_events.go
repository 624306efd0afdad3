package execshell

import "go.uber.org/zap"

const (
	commandStartedLogMessageConstant         = "command started"
	commandCompletedLogMessageConstant       = "command completed"
	commandFailedLogMessageConstant          = "command exited with non-zero status"
	commandExecutionFailedLogMessageConstant = "command execution failed"
	logFieldCommandNameConstant              = "command_name"
	logFieldArgumentsConstant                = "arguments"
	logFieldStandardInputBytesConstant       = "standard_input_bytes"
	logFieldTimeoutConstant                  = "timeout"
	logFieldExitCodeConstant                 = "exit_code"
	logFieldStandardOutputBytesConstant      = "standard_output_bytes"
	logFieldStandardErrorConstant            = "standard_error"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// compositeCommandEventObserver fans events out to every registered observer in order.
type compositeCommandEventObserver []CommandEventObserver

func newCompositeCommandEventObserver(observers []CommandEventObserver) compositeCommandEventObserver {
	registeredObservers := make(compositeCommandEventObserver, 0, len(observers))
	for _, observer := range observers {
		if observer == nil {
			continue
		}
		registeredObservers = append(registeredObservers, observer)
	}
	return registeredObservers
}

func (observers compositeCommandEventObserver) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		observer.CommandStarted(command)
	}
}

func (observers compositeCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		observer.CommandCompleted(command, result)
	}
}

func (observers compositeCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		observer.CommandExecutionFailed(command, failure)
	}
}

// structuredCommandEventLogger records lifecycle events as debug entries with machine-readable fields.
type structuredCommandEventLogger struct {
	logger *zap.Logger
}

func newStructuredCommandEventLogger(logger *zap.Logger) structuredCommandEventLogger {
	return structuredCommandEventLogger{logger: logger}
}

func (eventLogger structuredCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Debug(commandStartedLogMessageConstant, commandFields(command)...)
}

func (eventLogger structuredCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	resultFields := append(commandFields(command),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.Int(logFieldStandardOutputBytesConstant, len(result.StandardOutput)),
	)
	if result.ExitCode != 0 {
		eventLogger.logger.Debug(commandFailedLogMessageConstant, append(resultFields, zap.String(logFieldStandardErrorConstant, result.StandardError))...)
		return
	}
	eventLogger.logger.Debug(commandCompletedLogMessageConstant, resultFields...)
}

func (eventLogger structuredCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	eventLogger.logger.Debug(commandExecutionFailedLogMessageConstant, append(commandFields(command), zap.Error(failure))...)
}

func commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldStandardInputBytesConstant, len(command.Details.StandardInput)),
		zap.Duration(logFieldTimeoutConstant, command.Details.EffectiveTimeout()),
	}
}
