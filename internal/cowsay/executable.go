package cowsay

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	pathutils "github.com/temirov/cowtalk/internal/utils/path"
)

const (
	executableNotConfiguredMessageConstant = "cowsay executable not configured"
	executableNotFoundMessageConstant      = "cowsay executable not found"
	executableNotFoundTemplateConstant     = "%w: %s: %w"
	executableIsDirectoryMessageConstant   = "is a directory"
	pathSeparatorCharactersConstant        = `/\`
)

var (
	// ErrExecutableNotConfigured indicates that the executable setting was blank.
	ErrExecutableNotConfigured = errors.New(executableNotConfiguredMessageConstant)
	// ErrExecutableNotFound indicates that the executable does not exist at the configured path or on PATH.
	ErrExecutableNotFound = errors.New(executableNotFoundMessageConstant)

	errExecutableIsDirectory = errors.New(executableIsDirectoryMessageConstant)
)

// ResolveExecutable locates the configured executable. Values containing a path separator are
// checked on disk after home expansion; bare names are searched for on PATH.
func ResolveExecutable(configuredExecutable string, homeExpander *pathutils.HomeExpander) (string, error) {
	trimmedExecutable := strings.TrimSpace(configuredExecutable)
	if len(trimmedExecutable) == 0 {
		return "", ErrExecutableNotConfigured
	}

	expandedExecutable := homeExpander.Expand(trimmedExecutable)
	if !strings.ContainsAny(expandedExecutable, pathSeparatorCharactersConstant) {
		resolvedPath, lookupError := exec.LookPath(expandedExecutable)
		if lookupError != nil {
			return "", fmt.Errorf(executableNotFoundTemplateConstant, ErrExecutableNotFound, expandedExecutable, lookupError)
		}
		return resolvedPath, nil
	}

	fileInformation, statError := os.Stat(expandedExecutable)
	if statError != nil {
		return "", fmt.Errorf(executableNotFoundTemplateConstant, ErrExecutableNotFound, expandedExecutable, statError)
	}
	if fileInformation.IsDir() {
		return "", fmt.Errorf(executableNotFoundTemplateConstant, ErrExecutableNotFound, expandedExecutable, errExecutableIsDirectory)
	}
	return expandedExecutable, nil
}
