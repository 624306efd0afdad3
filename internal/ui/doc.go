// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger translates cowsay process lifecycle events into
// short log lines for users who run cowtalk with console logging, while the
// structured fields continue to flow through the executor's own logger.
package ui
