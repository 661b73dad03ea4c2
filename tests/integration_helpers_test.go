package tests

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const integrationCommandTimeout = 120 * time.Second

type hookRunResult struct {
	standardOutput string
	standardError  string
	exitCode       int
}

// runHook executes the hook binary via `go run` from the repository root with
// workingDirectory as the rendered project directory.
func runHook(testInstance *testing.T, workingDirectory string, environment []string) hookRunResult {
	testInstance.Helper()

	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)

	executionContext, cancelExecution := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancelExecution()

	hookBinaryPath := filepath.Join(testInstance.TempDir(), "hook")
	buildCommand := exec.CommandContext(executionContext, "go", "build", "-o", hookBinaryPath, ".")
	buildCommand.Dir = repositoryRootDirectory
	buildOutput, buildError := buildCommand.CombinedOutput()
	require.NoError(testInstance, buildError, string(buildOutput))

	hookCommand := exec.CommandContext(executionContext, hookBinaryPath)
	hookCommand.Dir = workingDirectory
	hookCommand.Env = environment

	outputBuffer := new(bytes.Buffer)
	errorBuffer := new(bytes.Buffer)
	hookCommand.Stdout = outputBuffer
	hookCommand.Stderr = errorBuffer

	runError := hookCommand.Run()
	exitCode := 0
	if runError != nil {
		exitError, isExitError := runError.(*exec.ExitError)
		require.True(testInstance, isExitError, runError)
		exitCode = exitError.ExitCode()
	}

	return hookRunResult{
		standardOutput: outputBuffer.String(),
		standardError:  errorBuffer.String(),
		exitCode:       exitCode,
	}
}

// baseEnvironment copies the process environment without the scaffold stage variable.
func baseEnvironment() []string {
	environment := make([]string, 0, len(os.Environ()))
	for _, environmentEntry := range os.Environ() {
		if len(environmentEntry) >= len("SCAFFOLD_STAGE=") && environmentEntry[:len("SCAFFOLD_STAGE=")] == "SCAFFOLD_STAGE=" {
			continue
		}
		environment = append(environment, environmentEntry)
	}
	return environment
}
