// Package console runs the interactive prompt loop: it reads one line at a
// time, hands each line to an Invoker, and renders the InvocationResult until
// the user enters the exit keyword, an empty line, or closes the input.
package console
