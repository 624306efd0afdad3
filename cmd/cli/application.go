package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/cowtalk/internal/console"
	"github.com/temirov/cowtalk/internal/cowsay"
	"github.com/temirov/cowtalk/internal/execshell"
	"github.com/temirov/cowtalk/internal/ui"
	"github.com/temirov/cowtalk/internal/utils"
	pathutils "github.com/temirov/cowtalk/internal/utils/path"
)

const (
	applicationNameConstant                     = "cowtalk"
	applicationShortDescriptionConstant         = "Talk to cowsay from an interactive prompt"
	applicationLongDescriptionConstant          = "cowtalk reads lines from the console, hands each one to cowsay, and prints the cow. An empty line, end of input, or 'quit' ends the session."
	configFileFlagNameConstant                  = "config"
	configFileFlagUsageConstant                 = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                    = "log-level"
	logLevelFlagUsageConstant                   = "Override the configured log level."
	logFormatFlagNameConstant                   = "log-format"
	logFormatFlagUsageConstant                  = "Override the configured log format (structured or console)."
	executableFlagNameConstant                  = "executable"
	executableFlagUsageConstant                 = "Override the cowsay executable (a name on PATH or a path)."
	timeoutFlagNameConstant                     = "timeout"
	timeoutFlagUsageConstant                    = "Override the per-message cowsay timeout."
	noColorFlagNameConstant                     = "no-color"
	noColorFlagUsageConstant                    = "Print failures and the farewell without color."
	initFlagNameConstant                        = "init"
	initFlagUsageConstant                       = "Write the default configuration to the given path and exit."
	initFlagDefaultPathConstant                 = "config.yaml"
	forceFlagNameConstant                       = "force"
	forceFlagUsageConstant                      = "Overwrite an existing file when used with --init."
	printConfigFlagNameConstant                 = "print-config"
	printConfigFlagUsageConstant                = "Print the effective configuration as YAML and exit."
	commonConfigurationKeyConstant              = "common"
	commonLogLevelConfigKeyConstant             = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant            = commonConfigurationKeyConstant + ".log_format"
	cowsayConfigurationKeyConstant              = "cowsay"
	consoleConfigurationKeyConstant             = "console"
	consolePromptConfigKeyConstant              = consoleConfigurationKeyConstant + ".prompt"
	consoleFarewellConfigKeyConstant            = consoleConfigurationKeyConstant + ".farewell"
	consoleExitKeywordConfigKeyConstant         = consoleConfigurationKeyConstant + ".exit_keyword"
	consoleColorConfigKeyConstant               = consoleConfigurationKeyConstant + ".color"
	environmentPrefixConstant                   = "COWTALK"
	configurationNameConstant                   = "config"
	configurationTypeConstant                   = "yaml"
	configurationInitializedMessageConstant     = "configuration initialized"
	configurationLogLevelFieldConstant          = "log_level"
	configurationLogFormatFieldConstant         = "log_format"
	configurationFileFieldConstant              = "config_file"
	configurationLoadErrorTemplateConstant      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant         = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant             = "unable to flush logger: %w"
	executableResolutionErrorTemplateConstant   = "cowsay is not available: %w"
	executorCreationErrorTemplateConstant       = "unable to create command executor: %w"
	serviceCreationErrorTemplateConstant        = "unable to create cowsay service: %w"
	sessionCreationErrorTemplateConstant        = "unable to create console session: %w"
	configurationExistsTemplateConstant         = "%w: %s (use --force to overwrite)"
	configurationInspectErrorTemplateConstant   = "unable to inspect %s: %w"
	configurationDirectoryErrorTemplateConstant = "unable to create directory for %s: %w"
	configurationWriteErrorTemplateConstant     = "unable to write %s: %w"
	configurationPrintErrorTemplateConstant     = "unable to print configuration: %w"
	configurationWrittenTemplateConstant        = "Wrote default configuration to %s\n"
	configurationFileExistsMessageConstant      = "configuration file already exists"
	executableResolvedMessageConstant           = "cowsay executable resolved"
	logFieldExecutablePathConstant              = "executable_path"
	logFieldTimeoutConstant                     = "timeout"
	loggerNotInitializedMessageConstant         = "logger not initialized"
	defaultConfigurationSearchPathConstant      = "."
	userConfigurationSearchPathConstant         = "~/.cowtalk"
	configurationFilePermissionsConstant        = 0o644
	configurationDirectoryPermissionsConstant   = 0o755
	yamlIndentationConstant                     = 2
)

// ErrConfigurationFileExists indicates that --init would overwrite an existing file without --force.
var ErrConfigurationFileExists = errors.New(configurationFileExistsMessageConstant)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration  `mapstructure:"common" yaml:"common"`
	Cowsay  cowsay.Configuration            `mapstructure:"cowsay" yaml:"cowsay"`
	Console ApplicationConsoleConfiguration `mapstructure:"console" yaml:"console"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// ApplicationConsoleConfiguration stores the texts and colors of the interactive session.
type ApplicationConsoleConfiguration struct {
	Prompt      string `mapstructure:"prompt" yaml:"prompt"`
	Farewell    string `mapstructure:"farewell" yaml:"farewell"`
	ExitKeyword string `mapstructure:"exit_keyword" yaml:"exit_keyword"`
	Color       bool   `mapstructure:"color" yaml:"color"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	homeExpander          *pathutils.HomeExpander
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	executableFlagValue   string
	timeoutFlagValue      time.Duration
	noColorFlagValue      bool
	initTargetPath        string
	forceFlagValue        bool
	printConfigFlagValue  bool
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	homeExpander := pathutils.NewHomeExpander()
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, homeExpander.Expand(userConfigurationSearchPathConstant)},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		homeExpander:        homeExpander,
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	cobraCommand.Flags().StringVar(&application.executableFlagValue, executableFlagNameConstant, "", executableFlagUsageConstant)
	cobraCommand.Flags().DurationVar(&application.timeoutFlagValue, timeoutFlagNameConstant, 0, timeoutFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.noColorFlagValue, noColorFlagNameConstant, false, noColorFlagUsageConstant)
	cobraCommand.Flags().StringVar(&application.initTargetPath, initFlagNameConstant, "", initFlagUsageConstant)
	cobraCommand.Flags().Lookup(initFlagNameConstant).NoOptDefVal = initFlagDefaultPathConstant
	cobraCommand.Flags().BoolVar(&application.forceFlagValue, forceFlagNameConstant, false, forceFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.printConfigFlagValue, printConfigFlagNameConstant, false, printConfigFlagUsageConstant)
	cobraCommand.MarkFlagsMutuallyExclusive(initFlagNameConstant, printConfigFlagNameConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command until it finishes or the process receives an interrupt,
// then flushes the logger.
func (application *Application) Execute() error {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	executionError := application.rootCommand.ExecuteContext(signalContext)
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultSessionOptions := console.DefaultSessionOptions()
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:     string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant:    string(utils.LogFormatConsole),
		consolePromptConfigKeyConstant:      defaultSessionOptions.Prompt,
		consoleFarewellConfigKeyConstant:    defaultSessionOptions.Farewell,
		consoleExitKeywordConfigKeyConstant: defaultSessionOptions.ExitKeyword,
		consoleColorConfigKeyConstant:       true,
	}
	for configurationKey, configurationValue := range cowsay.DefaultConfigurationValues(cowsayConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.localFlagChanged(command, executableFlagNameConstant) {
		application.configuration.Cowsay.Executable = application.executableFlagValue
	}
	if application.localFlagChanged(command, timeoutFlagNameConstant) {
		application.configuration.Cowsay.Timeout = application.timeoutFlagValue
	}
	if application.localFlagChanged(command, noColorFlagNameConstant) && application.noColorFlagValue {
		application.configuration.Console.Color = false
	}
	application.configuration.Cowsay = application.configuration.Cowsay.Sanitize()
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	switch {
	case application.localFlagChanged(command, initFlagNameConstant):
		return application.writeDefaultConfiguration(command)
	case application.printConfigFlagValue:
		return application.printEffectiveConfiguration(command)
	default:
		return application.runSession(command)
	}
}

func (application *Application) runSession(command *cobra.Command) error {
	cowsayConfiguration := application.configuration.Cowsay
	executablePath, resolutionError := cowsay.ResolveExecutable(cowsayConfiguration.Executable, application.homeExpander)
	if resolutionError != nil {
		return fmt.Errorf(executableResolutionErrorTemplateConstant, resolutionError)
	}

	application.logger.Debug(
		executableResolvedMessageConstant,
		zap.String(logFieldExecutablePathConstant, executablePath),
		zap.Duration(logFieldTimeoutConstant, cowsayConfiguration.Timeout),
	)

	var observers []execshell.CommandEventObserver
	if application.humanReadableLoggingEnabled() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(application.logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner(application.logger), observers...)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	cowsayService, serviceError := cowsay.NewService(application.logger, shellExecutor, cowsay.ServiceOptions{
		ExecutablePath: executablePath,
		Arguments:      cowsayConfiguration.Arguments,
		Timeout:        cowsayConfiguration.Timeout,
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	output := utils.NewFlushingWriter(bufio.NewWriter(command.OutOrStdout()))
	consoleConfiguration := application.configuration.Console
	session, sessionError := console.NewSession(
		application.logger,
		console.NewLinePrompter(command.InOrStdin(), output),
		cowsayService,
		console.NewRenderer(output, consoleConfiguration.Color),
		console.SessionOptions{
			Prompt:      consoleConfiguration.Prompt,
			Farewell:    consoleConfiguration.Farewell,
			ExitKeyword: consoleConfiguration.ExitKeyword,
		},
	)
	if sessionError != nil {
		return fmt.Errorf(sessionCreationErrorTemplateConstant, sessionError)
	}

	return session.Run(command.Context())
}

func (application *Application) writeDefaultConfiguration(command *cobra.Command) error {
	targetPath := application.homeExpander.Expand(strings.TrimSpace(application.initTargetPath))
	if len(targetPath) == 0 {
		targetPath = initFlagDefaultPathConstant
	}

	_, statError := os.Stat(targetPath)
	switch {
	case statError == nil && !application.forceFlagValue:
		return fmt.Errorf(configurationExistsTemplateConstant, ErrConfigurationFileExists, targetPath)
	case statError != nil && !errors.Is(statError, fs.ErrNotExist):
		return fmt.Errorf(configurationInspectErrorTemplateConstant, targetPath, statError)
	}

	if directoryError := os.MkdirAll(filepath.Dir(targetPath), configurationDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(configurationDirectoryErrorTemplateConstant, targetPath, directoryError)
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if writeError := os.WriteFile(targetPath, configurationContent, configurationFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(configurationWriteErrorTemplateConstant, targetPath, writeError)
	}

	_, printError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenTemplateConstant, targetPath)
	return printError
}

func (application *Application) printEffectiveConfiguration(command *cobra.Command) error {
	encoder := yaml.NewEncoder(command.OutOrStdout())
	encoder.SetIndent(yamlIndentationConstant)
	if encodeError := encoder.Encode(application.configuration); encodeError != nil {
		return fmt.Errorf(configurationPrintErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(configurationPrintErrorTemplateConstant, closeError)
	}
	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) localFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	return command.Flags().Changed(flagName)
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
