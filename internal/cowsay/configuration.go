package cowsay

import (
	"strings"
	"time"

	"github.com/temirov/cowtalk/internal/execshell"
)

const (
	configurationExecutableKeyConstant = "executable"
	configurationArgumentsKeyConstant  = "arguments"
	configurationTimeoutKeyConstant    = "timeout"
	configurationKeySeparatorConstant  = "."
)

// Configuration describes how the cowsay executable is located and invoked.
type Configuration struct {
	Executable string        `mapstructure:"executable"`
	Arguments  []string      `mapstructure:"arguments"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type renderedConfiguration struct {
	Executable string   `yaml:"executable"`
	Arguments  []string `yaml:"arguments"`
	Timeout    string   `yaml:"timeout"`
}

// DefaultConfiguration looks cowsay up on PATH and allows it five seconds per invocation.
func DefaultConfiguration() Configuration {
	return Configuration{
		Executable: string(execshell.CommandCowsay),
		Arguments:  []string{},
		Timeout:    execshell.DefaultCommandTimeout,
	}
}

// DefaultConfigurationValues exposes DefaultConfiguration as Viper defaults rooted at configurationPrefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		joinConfigurationKey(configurationPrefix, configurationExecutableKeyConstant): defaults.Executable,
		joinConfigurationKey(configurationPrefix, configurationArgumentsKeyConstant):  defaults.Arguments,
		joinConfigurationKey(configurationPrefix, configurationTimeoutKeyConstant):    defaults.Timeout.String(),
	}
}

// Sanitize trims values and restores defaults for the timeout and executable when unset.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Executable = strings.TrimSpace(configuration.Executable)
	if len(sanitized.Executable) == 0 {
		sanitized.Executable = string(execshell.CommandCowsay)
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = execshell.DefaultCommandTimeout
	}

	sanitized.Arguments = make([]string, 0, len(configuration.Arguments))
	for _, argument := range configuration.Arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 {
			continue
		}
		sanitized.Arguments = append(sanitized.Arguments, trimmedArgument)
	}
	return sanitized
}

// MarshalYAML renders the timeout as a duration string so the output can be loaded back.
func (configuration Configuration) MarshalYAML() (any, error) {
	arguments := configuration.Arguments
	if arguments == nil {
		arguments = []string{}
	}
	return renderedConfiguration{
		Executable: configuration.Executable,
		Arguments:  arguments,
		Timeout:    configuration.Timeout.String(),
	}, nil
}

func joinConfigurationKey(configurationPrefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(configurationPrefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
