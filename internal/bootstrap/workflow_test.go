package bootstrap_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/templatehooks/spinup/internal/bootstrap"
	"github.com/templatehooks/spinup/internal/execshell"
	"github.com/templatehooks/spinup/internal/githubauth"
)

const (
	testMissingTokenCaseNameConstant      = "missing_token_runs_no_commands"
	testHappyPathCaseNameConstant         = "full_command_sequence"
	testEarlyFailureCaseNameConstant      = "commit_failure_stops_before_push"
	testPushFailureCaseNameConstant       = "push_failure_yields_push_error"
	testOrganizationNameConstant          = "acme"
	testRepositoryNameConstant            = "widget"
	testAPITokenValueConstant             = "secret-token"
	testWorkingDirectoryConstant          = "/tmp/widget"
	testPushStandardErrorConstant         = "remote rejected"
	testCommitStandardErrorConstant       = "nothing to commit"
	testExpectedPushURLConstant           = "https://secret-token@github.com/acme/widget.git"
	testRerunCaseNameConstant             = "rerun_stops_at_existing_remote"
	testRemoteExistsStandardErrorConstant = "error: remote origin already exists."
)

type recordingGitExecutor struct {
	executedCommands []execshell.CommandDetails
	failOnSubcommand string
	failureResult    execshell.ExecutionResult
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details)
	if len(executor.failOnSubcommand) > 0 && len(details.Arguments) > 0 && details.Arguments[0] == executor.failOnSubcommand {
		command := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
		return executor.failureResult, execshell.CommandFailedError{Command: command, Result: executor.failureResult}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingGitExecutor) subcommands() []string {
	subcommandNames := make([]string, 0, len(executor.executedCommands))
	for _, details := range executor.executedCommands {
		subcommandNames = append(subcommandNames, details.Arguments[0])
	}
	return subcommandNames
}

func clearTokenEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	testInstance.Setenv(githubauth.EnvGitHubCLIToken, "")
	testInstance.Setenv(githubauth.EnvGitHubToken, "")
	testInstance.Setenv(githubauth.EnvGitHubAPIToken, "")
}

func TestNewWorkflowRequiresExecutor(testInstance *testing.T) {
	workflow, workflowError := bootstrap.NewWorkflow(nil, nil)
	require.Nil(testInstance, workflow)
	require.ErrorIs(testInstance, workflowError, bootstrap.ErrExecutorNotConfigured)
}

func TestPushInitialRepositoryRequiresCredentials(testInstance *testing.T) {
	testInstance.Run(testMissingTokenCaseNameConstant, func(subtestInstance *testing.T) {
		clearTokenEnvironment(subtestInstance)
		executor := &recordingGitExecutor{}
		workflow, workflowError := bootstrap.NewWorkflow(executor, nil)
		require.NoError(subtestInstance, workflowError)

		pushError := workflow.PushInitialRepository(context.Background(), bootstrap.PushOptions{
			Organization:   testOrganizationNameConstant,
			RepositoryName: testRepositoryNameConstant,
		})

		var credentialsError githubauth.CredentialsError
		require.ErrorAs(subtestInstance, pushError, &credentialsError)
		require.Equal(subtestInstance, githubauth.EnvGitHubAPIToken, credentialsError.VariableName)
		require.Empty(subtestInstance, executor.executedCommands)
	})
}

func TestPushInitialRepositoryCommandSequence(testInstance *testing.T) {
	testInstance.Run(testHappyPathCaseNameConstant, func(subtestInstance *testing.T) {
		clearTokenEnvironment(subtestInstance)
		environment := map[string]string{githubauth.EnvGitHubAPIToken: testAPITokenValueConstant}
		executor := &recordingGitExecutor{}
		workflow, workflowError := bootstrap.NewWorkflow(executor, environment)
		require.NoError(subtestInstance, workflowError)

		pushError := workflow.PushInitialRepository(context.Background(), bootstrap.PushOptions{
			Organization:     testOrganizationNameConstant,
			RepositoryName:   testRepositoryNameConstant,
			WorkingDirectory: testWorkingDirectoryConstant,
		})
		require.NoError(subtestInstance, pushError)

		expectedSubcommands := []string{"init", "config", "config", "add", "commit", "branch", "remote", "push"}
		require.Equal(subtestInstance, expectedSubcommands, executor.subcommands())

		for _, details := range executor.executedCommands {
			require.Equal(subtestInstance, testWorkingDirectoryConstant, details.WorkingDirectory)
		}

		userNameCommand := executor.executedCommands[1]
		require.Equal(subtestInstance, []string{"config", "user.name", "Name"}, userNameCommand.Arguments)
		userEmailCommand := executor.executedCommands[2]
		require.Equal(subtestInstance, []string{"config", "user.email", "email@email.com"}, userEmailCommand.Arguments)

		commitCommand := executor.executedCommands[4]
		expectedCommitArguments := []string{"commit"}
		for _, commitMessage := range bootstrap.DefaultCommitMessages {
			expectedCommitArguments = append(expectedCommitArguments, "-m", commitMessage)
		}
		require.Equal(subtestInstance, expectedCommitArguments, commitCommand.Arguments)

		branchCommand := executor.executedCommands[5]
		require.Equal(subtestInstance, []string{"branch", "-M", "main"}, branchCommand.Arguments)

		remoteCommand := executor.executedCommands[6]
		require.Equal(subtestInstance, []string{"remote", "add", "origin", testExpectedPushURLConstant}, remoteCommand.Arguments)

		pushCommand := executor.executedCommands[7]
		require.Equal(subtestInstance, []string{"push", "origin", "main"}, pushCommand.Arguments)
	})
}

func TestPushInitialRepositoryFailureHandling(testInstance *testing.T) {
	testCases := []struct {
		name                string
		failOnSubcommand    string
		failureResult       execshell.ExecutionResult
		expectPushError     bool
		expectedSubcommands []string
	}{
		{
			name:                testEarlyFailureCaseNameConstant,
			failOnSubcommand:    "commit",
			failureResult:       execshell.ExecutionResult{ExitCode: 1, StandardError: testCommitStandardErrorConstant},
			expectPushError:     false,
			expectedSubcommands: []string{"init", "config", "config", "add", "commit"},
		},
		{
			name:                testPushFailureCaseNameConstant,
			failOnSubcommand:    "push",
			failureResult:       execshell.ExecutionResult{ExitCode: 128, StandardError: testPushStandardErrorConstant},
			expectPushError:     true,
			expectedSubcommands: []string{"init", "config", "config", "add", "commit", "branch", "remote", "push"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			clearTokenEnvironment(subtestInstance)
			environment := map[string]string{githubauth.EnvGitHubAPIToken: testAPITokenValueConstant}
			executor := &recordingGitExecutor{failOnSubcommand: testCase.failOnSubcommand, failureResult: testCase.failureResult}
			workflow, workflowError := bootstrap.NewWorkflow(executor, environment)
			require.NoError(subtestInstance, workflowError)

			pushError := workflow.PushInitialRepository(context.Background(), bootstrap.PushOptions{
				Organization:   testOrganizationNameConstant,
				RepositoryName: testRepositoryNameConstant,
			})
			require.Error(subtestInstance, pushError)
			require.Equal(subtestInstance, testCase.expectedSubcommands, executor.subcommands())

			if testCase.expectPushError {
				var typedPushError bootstrap.PushError
				require.ErrorAs(subtestInstance, pushError, &typedPushError)
				require.Equal(subtestInstance, testCase.failureResult.ExitCode, typedPushError.ExitCode)
				require.Equal(subtestInstance, testCase.failureResult.StandardError, typedPushError.StandardError)
				require.True(subtestInstance, strings.Contains(pushError.Error(), testPushStandardErrorConstant))
			} else {
				var commandFailure execshell.CommandFailedError
				require.True(subtestInstance, errors.As(pushError, &commandFailure))
			}
		})
	}
}

func TestPushInitialRepositoryRerunStopsAtExistingRemote(testInstance *testing.T) {
	testInstance.Run(testRerunCaseNameConstant, func(subtestInstance *testing.T) {
		clearTokenEnvironment(subtestInstance)
		environment := map[string]string{githubauth.EnvGitHubAPIToken: testAPITokenValueConstant}
		executor := &recordingGitExecutor{}
		workflow, workflowError := bootstrap.NewWorkflow(executor, environment)
		require.NoError(subtestInstance, workflowError)

		options := bootstrap.PushOptions{
			Organization:   testOrganizationNameConstant,
			RepositoryName: testRepositoryNameConstant,
		}
		require.NoError(subtestInstance, workflow.PushInitialRepository(context.Background(), options))

		executor.failOnSubcommand = "remote"
		executor.failureResult = execshell.ExecutionResult{ExitCode: 3, StandardError: testRemoteExistsStandardErrorConstant}

		rerunError := workflow.PushInitialRepository(context.Background(), options)

		var commandFailure execshell.CommandFailedError
		require.True(subtestInstance, errors.As(rerunError, &commandFailure))
		require.Contains(subtestInstance, rerunError.Error(), testRemoteExistsStandardErrorConstant)

		firstRunSubcommands := []string{"init", "config", "config", "add", "commit", "branch", "remote", "push"}
		rerunSubcommands := []string{"init", "config", "config", "add", "commit", "branch", "remote"}
		require.Equal(subtestInstance, append(firstRunSubcommands, rerunSubcommands...), executor.subcommands())
	})
}
