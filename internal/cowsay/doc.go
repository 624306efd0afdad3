// Package cowsay turns a line of text into a single cowsay invocation and
// reduces the outcome to an InvocationResult.
//
// Service owns classification: start failures, timeouts, non-zero exits and
// empty output all become InvocationFailure values, so callers never see an
// error or a panic from an individual invocation. ResolveExecutable performs
// the startup check that the configured executable exists.
package cowsay
