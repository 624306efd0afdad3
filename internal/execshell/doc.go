// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and timeouts via ShellExecutor and exposes
// OSCommandRunner, which feeds standard input to a child process while
// draining its standard output and standard error concurrently so that large
// payloads never stall on a full pipe buffer.
package execshell
