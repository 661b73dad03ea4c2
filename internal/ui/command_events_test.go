package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/templatehooks/spinup/internal/execshell"
	"github.com/templatehooks/spinup/internal/ui"
)

const (
	testStartedEventCaseNameConstant          = "started"
	testCompletedEventCaseNameConstant        = "completed_success"
	testFailedExitEventCaseNameConstant       = "completed_failure"
	testExecutionFailureEventCaseNameConstant = "execution_failure"
)

func TestConsoleCommandEventLoggerLevels(testInstance *testing.T) {
	pushCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"push", "origin", "main"}},
	}

	testCases := []struct {
		name          string
		notify        func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel zap.AtomicLevel
		expectedText  string
	}{
		{
			name: testStartedEventCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(pushCommand)
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.InfoLevel),
			expectedText:  "Pushing main to origin",
		},
		{
			name: testCompletedEventCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(pushCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.InfoLevel),
			expectedText:  "Pushed main to origin",
		},
		{
			name: testFailedExitEventCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(pushCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: "denied"})
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.WarnLevel),
			expectedText:  "Failed to push main to origin",
		},
		{
			name: testExecutionFailureEventCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(pushCommand, errors.New("git not installed"))
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.ErrorLevel),
			expectedText:  "git not installed",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.notify(eventLogger)

			loggedEntries := observedLogs.All()
			require.Len(testInstance, loggedEntries, 1)
			require.Equal(testInstance, testCase.expectedLevel.Level(), loggedEntries[0].Level)
			require.Contains(testInstance, loggedEntries[0].Message, testCase.expectedText)
		})
	}
}
