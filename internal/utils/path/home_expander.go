// Package pathutils expands home directory shortcuts in configured paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tildeSymbolConstant = "~"

// homeRelativePrefixes lists the forms of "~/" accepted on the current platform.
var homeRelativePrefixes = uniquePrefixes(tildeSymbolConstant+"/", tildeSymbolConstant+string(os.PathSeparator))

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander turns "~" and "~/..." into paths under the user's home directory.
// The home directory is looked up once, on first use.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading "~" or "~/". Other paths, including "~user/...", and paths
// that cannot be expanded because the home directory is unknown are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}

	for _, prefix := range homeRelativePrefixes {
		if relativePath, found := strings.CutPrefix(candidatePath, prefix); found {
			return filepath.Join(homeDirectory, relativePath)
		}
	}
	return candidatePath
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}

func uniquePrefixes(prefixes ...string) []string {
	unique := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		if len(unique) > 0 && unique[len(unique)-1] == prefix {
			continue
		}
		unique = append(unique, prefix)
	}
	return unique
}
