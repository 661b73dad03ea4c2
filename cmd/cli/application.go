package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/templatehooks/spinup/internal/activation"
	"github.com/templatehooks/spinup/internal/bootstrap"
	"github.com/templatehooks/spinup/internal/execshell"
	"github.com/templatehooks/spinup/internal/githubapi"
	"github.com/templatehooks/spinup/internal/prompt"
	"github.com/templatehooks/spinup/internal/provision"
	"github.com/templatehooks/spinup/internal/scaffold"
	"github.com/templatehooks/spinup/internal/setup"
	"github.com/templatehooks/spinup/internal/ui"
	"github.com/templatehooks/spinup/internal/utils"
)

const (
	applicationNameConstant             = "spinup"
	applicationShortDescriptionConstant = "Post-generation setup hook for rendered project templates"
	applicationLongDescriptionConstant  = "spinup finalizes a rendered project template: it removes unselected scaffold files, provisions the remote GitHub repository, and pushes the initial commit."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Override the configured log level."
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Override the configured log format (structured or console)."

	commonConfigurationKeyConstant   = "common"
	commonLogLevelConfigKeyConstant  = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant = commonConfigurationKeyConstant + ".log_format"
	setupConfigurationKeyConstant    = "setup"
	setupRemoteNameConfigKeyConstant = setupConfigurationKeyConstant + ".remote_name"
	setupBranchConfigKeyConstant     = setupConfigurationKeyConstant + ".default_branch"
	setupMessagesConfigKeyConstant   = setupConfigurationKeyConstant + ".commit_messages"

	environmentPrefixConstant              = "SPINUP"
	configurationNameConstant              = "config"
	configurationTypeConstant              = "yaml"
	defaultConfigurationSearchPathConstant = "."

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	activationModeFieldConstant             = "mode"
	modeResolvedMessageConstant             = "activation mode resolved"

	configurationLoadErrorTemplateConstant = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant    = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant        = "unable to flush logger: %w"

	blockedModeMessageConstant      = "spinup runs as a template post-generation hook; render the template through your scaffolding tool instead of invoking it directly"
	blockedModeErrorMessageConstant = "direct invocation is not supported"
)

// ErrDirectInvocation is returned when the hook runs without the scaffolding stage variable set.
var ErrDirectInvocation = errors.New(blockedModeErrorMessageConstant)

// ApplicationConfiguration describes the persisted configuration for the hook.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Project setup.ProjectConfiguration     `mapstructure:"project"`
	Setup   setup.Configuration            `mapstructure:"setup"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired hook application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
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

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// RootCommand exposes the assembled root command for embedding and testing.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	setupDefaults := setup.DefaultConfiguration()
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		setupRemoteNameConfigKeyConstant: setupDefaults.RemoteName,
		setupBranchConfigKeyConstant:     setupDefaults.DefaultBranch,
		setupMessagesConfigKeyConstant:   setupDefaults.CommitMessages,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command) error {
	resolvedMode := activation.ResolveMode(nil)
	application.logger.Debug(modeResolvedMessageConstant, zap.String(activationModeFieldConstant, string(resolvedMode)))

	switch resolvedMode {
	case activation.ModeBlocked:
		fmt.Fprintln(command.ErrOrStderr(), blockedModeMessageConstant)
		return ErrDirectInvocation
	case activation.ModeCleanupOnly:
		return application.runCleanup()
	default:
		if cleanupError := application.runCleanup(); cleanupError != nil {
			return cleanupError
		}
		return application.runSetup(command)
	}
}

func (application *Application) runCleanup() error {
	cleaner, cleanerError := scaffold.NewCleaner(application.logger, scaffold.OSFileSystem{})
	if cleanerError != nil {
		return cleanerError
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	return cleaner.Clean(scaffold.Options{
		ProjectDirectory: workingDirectory,
		ModuleName:       application.configuration.Project.Module,
		IncludeSample:    application.configuration.Project.IncludeSample,
	})
}

func (application *Application) runSetup(command *cobra.Command) error {
	apiClient, clientError := githubapi.NewClient(nil)
	if clientError != nil {
		return clientError
	}

	provisioner, provisionerError := provision.NewService(apiClient, application.configuration.Project.Organization, command.ErrOrStderr())
	if provisionerError != nil {
		return provisionerError
	}

	executor, executorError := application.buildGitExecutor()
	if executorError != nil {
		return executorError
	}

	pushWorkflow, workflowError := bootstrap.NewWorkflow(executor, nil)
	if workflowError != nil {
		return workflowError
	}

	prompter, prompterError := prompt.NewBinaryPrompter(command.InOrStdin(), command.OutOrStdout(), prompt.DefaultAnswerNo)
	if prompterError != nil {
		return prompterError
	}

	setupService, serviceError := setup.NewService(setup.Dependencies{
		Provisioner:          provisioner,
		Pusher:               pushWorkflow,
		ProtectionConfigurer: provisioner,
		Prompter:             prompter,
		Output:               utils.NewFlushingWriter(command.OutOrStdout()),
		Errors:               command.ErrOrStderr(),
	})
	if serviceError != nil {
		return serviceError
	}

	return setupService.Run(command.Context(), application.configuration.Project, application.configuration.Setup)
}

func (application *Application) buildGitExecutor() (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	if application.humanReadableLoggingEnabled() {
		return execshell.NewShellExecutorWithObserver(application.logger, commandRunner, ui.NewConsoleCommandEventLogger(application.logger))
	}
	return execshell.NewShellExecutor(application.logger, commandRunner)
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
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
