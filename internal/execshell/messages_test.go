package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/templatehooks/spinup/internal/execshell"
)

const (
	testInitMessageCaseNameConstant    = "init"
	testConfigMessageCaseNameConstant  = "config_user_name"
	testCommitMessageCaseNameConstant  = "commit_with_message"
	testBranchMessageCaseNameConstant  = "branch_rename"
	testRemoteMessageCaseNameConstant  = "remote_add_redacts_url"
	testPushMessageCaseNameConstant    = "push_origin_main"
	testGenericMessageCaseNameConstant = "generic_fallback"
	testMessagesWorkingDirectory       = "/workspace/widget"
)

func TestCommandMessageFormatterBuildStartedMessage(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{
			name:            testInitMessageCaseNameConstant,
			arguments:       []string{"init"},
			expectedMessage: "Initializing repository in /workspace/widget",
		},
		{
			name:            testConfigMessageCaseNameConstant,
			arguments:       []string{"config", "user.name", "Name"},
			expectedMessage: "Setting user.name in /workspace/widget",
		},
		{
			name:            testCommitMessageCaseNameConstant,
			arguments:       []string{"commit", "-m", "Initial scaffolding [skip ci]", "-m", "Type: trivial"},
			expectedMessage: "Creating commit in /workspace/widget with message \"Initial scaffolding [skip ci]\"",
		},
		{
			name:            testBranchMessageCaseNameConstant,
			arguments:       []string{"branch", "-M", "main"},
			expectedMessage: "Renaming current branch to main in /workspace/widget",
		},
		{
			name:            testRemoteMessageCaseNameConstant,
			arguments:       []string{"remote", "add", "origin"},
			expectedMessage: "Adding remote origin in /workspace/widget",
		},
		{
			name:            testPushMessageCaseNameConstant,
			arguments:       []string{"push", "origin", "main"},
			expectedMessage: "Pushing main to origin from /workspace/widget",
		},
		{
			name:            testGenericMessageCaseNameConstant,
			arguments:       []string{"status"},
			expectedMessage: "Running git status (in /workspace/widget)",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := execshell.ShellCommand{
				Name: execshell.CommandGit,
				Details: execshell.CommandDetails{
					Arguments:        testCase.arguments,
					WorkingDirectory: testMessagesWorkingDirectory,
				},
			}
			require.Equal(testInstance, testCase.expectedMessage, formatter.BuildStartedMessage(command))
		})
	}
}

func TestCommandMessageFormatterBuildFailureMessageIncludesExitCodeAndStderr(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"push", "origin", "main"}},
	}
	result := execshell.ExecutionResult{ExitCode: 128, StandardError: "remote: Repository not found."}

	failureMessage := formatter.BuildFailureMessage(command, result)
	require.Contains(testInstance, failureMessage, "exit code 128")
	require.Contains(testInstance, failureMessage, "Repository not found.")
}

func TestRedactedCommandLabelMasksEmbeddedCredentials(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments: []string{"remote", "add", "origin", "https://token-value@github.com/acme/widget.git"},
		},
	}

	commandLabel := execshell.RedactedCommandLabel(command)
	require.Equal(testInstance, "git remote add origin https://***@github.com/acme/widget.git", commandLabel)
}
