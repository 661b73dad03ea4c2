// Package bootstrap turns a freshly rendered project directory into a git repository and pushes it upstream.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/templatehooks/spinup/internal/execshell"
	"github.com/templatehooks/spinup/internal/githubauth"
)

const (
	defaultRemoteNameConstant    = "origin"
	defaultBranchNameConstant    = "main"
	pushURLTemplateConstant      = "https://%s@github.com/%s/%s.git"
	pushFailureMessageTemplate   = "initial push failed with exit code %d: %s"
	executorNotConfiguredMessage = "git executor not configured"

	gitInitSubcommandConstant     = "init"
	gitConfigSubcommandConstant   = "config"
	gitAddSubcommandConstant      = "add"
	gitCommitSubcommandConstant   = "commit"
	gitBranchSubcommandConstant   = "branch"
	gitRemoteSubcommandConstant   = "remote"
	gitPushSubcommandConstant     = "push"
	gitUserNameConfigKeyConstant  = "user.name"
	gitUserEmailConfigKeyConstant = "user.email"
	gitAddAllPathSpecConstant     = "."
	gitCommitMessageFlagConstant  = "-m"
	gitBranchRenameFlagConstant   = "-M"
	gitRemoteAddDirectiveConstant = "add"
)

// DefaultCommitMessages are used when the caller supplies none.
var DefaultCommitMessages = []string{"Initial scaffolding [skip ci]", "Type: trivial"}

// ErrExecutorNotConfigured indicates the workflow was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessage)

// PushError reports a failed push to the upstream repository.
type PushError struct {
	ExitCode      int
	StandardError string
}

// Error summarizes the push failure with the git exit code and captured stderr.
func (pushError PushError) Error() string {
	return fmt.Sprintf(pushFailureMessageTemplate, pushError.ExitCode, pushError.StandardError)
}

// GitExecutor runs git commands on behalf of the workflow.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PushOptions describes the repository to initialize and push.
type PushOptions struct {
	Organization     string
	RepositoryName   string
	CommitMessages   []string
	WorkingDirectory string
	RemoteName       string
	DefaultBranch    string
}

// Workflow initializes a local repository and pushes its first commit upstream.
type Workflow struct {
	executor    GitExecutor
	environment map[string]string
}

// NewWorkflow constructs a bootstrap workflow using the supplied executor and environment overrides.
func NewWorkflow(executor GitExecutor, environment map[string]string) (*Workflow, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Workflow{executor: executor, environment: environment}, nil
}

// PushInitialRepository creates the initial commit and pushes it to the remote repository.
// The credential check happens before any git command runs so a missing token
// leaves the working directory untouched.
func (workflow *Workflow) PushInitialRepository(executionContext context.Context, options PushOptions) error {
	apiToken, tokenError := githubauth.RequireToken(workflow.environment)
	if tokenError != nil {
		return tokenError
	}

	committerName, committerEmail := githubauth.CommitterIdentity(workflow.environment)

	remoteName := options.RemoteName
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	branchName := options.DefaultBranch
	if len(branchName) == 0 {
		branchName = defaultBranchNameConstant
	}
	commitMessages := options.CommitMessages
	if len(commitMessages) == 0 {
		commitMessages = DefaultCommitMessages
	}

	commitArguments := []string{gitCommitSubcommandConstant}
	for _, commitMessage := range commitMessages {
		commitArguments = append(commitArguments, gitCommitMessageFlagConstant, commitMessage)
	}

	pushURL := fmt.Sprintf(pushURLTemplateConstant, apiToken, options.Organization, options.RepositoryName)

	commandArgumentLists := [][]string{
		{gitInitSubcommandConstant},
		{gitConfigSubcommandConstant, gitUserNameConfigKeyConstant, committerName},
		{gitConfigSubcommandConstant, gitUserEmailConfigKeyConstant, committerEmail},
		{gitAddSubcommandConstant, gitAddAllPathSpecConstant},
		commitArguments,
		{gitBranchSubcommandConstant, gitBranchRenameFlagConstant, branchName},
		{gitRemoteSubcommandConstant, gitRemoteAddDirectiveConstant, remoteName, pushURL},
	}
	for _, commandArguments := range commandArgumentLists {
		commandDetails := execshell.CommandDetails{Arguments: commandArguments, WorkingDirectory: options.WorkingDirectory}
		if _, commandError := workflow.executor.ExecuteGit(executionContext, commandDetails); commandError != nil {
			return commandError
		}
	}

	pushDetails := execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, remoteName, branchName},
		WorkingDirectory: options.WorkingDirectory,
	}
	if _, pushCommandError := workflow.executor.ExecuteGit(executionContext, pushDetails); pushCommandError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(pushCommandError, &commandFailure) {
			return PushError{ExitCode: commandFailure.Result.ExitCode, StandardError: commandFailure.Result.StandardError}
		}
		return pushCommandError
	}
	return nil
}
