package cowsay

// InvocationResult is the outcome of one cowsay invocation. It is either an
// InvocationSuccess or an InvocationFailure.
type InvocationResult interface {
	isInvocationResult()
}

// InvocationSuccess carries the text produced by a child process that exited cleanly.
type InvocationSuccess struct {
	Output   string
	ExitCode int
}

// InvocationFailure carries a one-line, user-facing description of what went wrong.
type InvocationFailure struct {
	Reason string
}

func (InvocationSuccess) isInvocationResult() {}

func (InvocationFailure) isInvocationResult() {}
