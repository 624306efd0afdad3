// Package utils exposes reusable helpers consumed by the cowtalk command.
//
// It houses ConfigurationLoader and LoggerFactory abstractions that integrate
// Viper, environment variables, and zap logging for the CLI, plus a
// FlushingWriter that keeps buffered console output visible between prompts.
package utils
