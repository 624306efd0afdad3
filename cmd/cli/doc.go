// Package cli builds the cowtalk command: a Cobra root command that loads the
// layered configuration, creates the zap logger, checks that cowsay can be
// found, and then runs the interactive console session until the user leaves.
package cli
