package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cowtalk/internal/cowsay"
)

const (
	defaultPromptConstant             = "Say something (or 'quit' to exit): "
	defaultFarewellConstant           = "Goodbye!"
	defaultExitKeywordConstant        = "quit"
	readLineErrorTemplateConstant     = "unable to read input: %w"
	renderErrorTemplateConstant       = "unable to render result: %w"
	farewellErrorTemplateConstant     = "unable to render farewell: %w"
	invokerNotConfiguredMessage       = "invoker not configured"
	prompterNotConfiguredMessage      = "line prompter not configured"
	rendererNotConfiguredMessage      = "renderer not configured"
	sessionEndedLogMessageConstant    = "console session ended"
	logFieldInvocationCountConstant   = "invocation_count"
	logFieldTerminationReasonConstant = "termination_reason"
	terminationReasonExitKeyword      = "exit_keyword"
	terminationReasonEmptyLine        = "empty_line"
	terminationReasonEndOfInput       = "end_of_input"
	terminationReasonContextCancelled = "context_cancelled"
)

var (
	// ErrInvokerNotConfigured indicates that a Session was created without an Invoker.
	ErrInvokerNotConfigured = errors.New(invokerNotConfiguredMessage)
	// ErrPrompterNotConfigured indicates that a Session was created without a LinePrompter.
	ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessage)
	// ErrRendererNotConfigured indicates that a Session was created without a Renderer.
	ErrRendererNotConfigured = errors.New(rendererNotConfiguredMessage)
)

// Invoker performs a single invocation for one line of input.
type Invoker interface {
	Say(executionContext context.Context, message string) cowsay.InvocationResult
}

// Prompter reads one line of input after displaying a prompt.
type Prompter interface {
	ReadLine(prompt string) (string, bool, error)
}

// SessionOptions configures the texts used by a Session.
type SessionOptions struct {
	Prompt      string
	Farewell    string
	ExitKeyword string
}

// DefaultSessionOptions returns the prompt, farewell and exit keyword used when none are configured.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{}.withDefaults()
}

// Session drives the read, invoke, render loop.
type Session struct {
	logger   *zap.Logger
	prompter Prompter
	invoker  Invoker
	renderer *Renderer
	options  SessionOptions
}

// NewSession validates collaborators and fills blank options with defaults.
func NewSession(logger *zap.Logger, prompter Prompter, invoker Invoker, renderer *Renderer, options SessionOptions) (*Session, error) {
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if invoker == nil {
		return nil, ErrInvokerNotConfigured
	}
	if renderer == nil {
		return nil, ErrRendererNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger:   logger,
		prompter: prompter,
		invoker:  invoker,
		renderer: renderer,
		options:  options.withDefaults(),
	}, nil
}

// Run loops until the exit keyword, an empty line, the end of input, or context cancellation.
// Invocation failures are rendered and never end the loop.
func (session *Session) Run(executionContext context.Context) error {
	invocationCount := 0
	terminationReason := terminationReasonEndOfInput

	for {
		if executionContext.Err() != nil {
			terminationReason = terminationReasonContextCancelled
			break
		}

		readOutcome, readCompleted := session.readLine(executionContext)
		if !readCompleted {
			terminationReason = terminationReasonContextCancelled
			break
		}
		if readOutcome.readError != nil {
			return fmt.Errorf(readLineErrorTemplateConstant, readOutcome.readError)
		}
		if !readOutcome.lineAvailable {
			terminationReason = terminationReasonEndOfInput
			break
		}
		line := readOutcome.line
		if len(line) == 0 {
			terminationReason = terminationReasonEmptyLine
			break
		}
		if strings.EqualFold(line, session.options.ExitKeyword) {
			terminationReason = terminationReasonExitKeyword
			break
		}

		invocationResult := session.invoker.Say(executionContext, line)
		invocationCount++
		if renderError := session.renderer.RenderResult(invocationResult); renderError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, renderError)
		}
	}

	session.logger.Debug(
		sessionEndedLogMessageConstant,
		zap.Int(logFieldInvocationCountConstant, invocationCount),
		zap.String(logFieldTerminationReasonConstant, terminationReason),
	)

	if farewellError := session.renderer.RenderFarewell(session.options.Farewell); farewellError != nil {
		return fmt.Errorf(farewellErrorTemplateConstant, farewellError)
	}
	return nil
}

type lineReadOutcome struct {
	line          string
	lineAvailable bool
	readError     error
}

// readLine returns false when the context ends before a line arrives. The pending read is abandoned.
func (session *Session) readLine(executionContext context.Context) (lineReadOutcome, bool) {
	outcomes := make(chan lineReadOutcome, 1)
	go func() {
		line, lineAvailable, readError := session.prompter.ReadLine(session.options.Prompt)
		outcomes <- lineReadOutcome{line: line, lineAvailable: lineAvailable, readError: readError}
	}()

	select {
	case outcome := <-outcomes:
		return outcome, true
	case <-executionContext.Done():
		return lineReadOutcome{}, false
	}
}

func (options SessionOptions) withDefaults() SessionOptions {
	resolved := options
	if len(resolved.Prompt) == 0 {
		resolved.Prompt = defaultPromptConstant
	}
	if len(strings.TrimSpace(resolved.Farewell)) == 0 {
		resolved.Farewell = defaultFarewellConstant
	}
	resolved.ExitKeyword = strings.TrimSpace(resolved.ExitKeyword)
	if len(resolved.ExitKeyword) == 0 {
		resolved.ExitKeyword = defaultExitKeywordConstant
	}
	return resolved
}
