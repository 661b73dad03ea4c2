// Package activation decides how much of the post-generation hook may run for the current invocation.
package activation

import (
	"os"
	"strings"
)

// EnvScaffoldStage gates the hook: unset or blank blocks execution, "setup"
// enables the full remote setup, any other value limits the run to local
// cleanup.
const EnvScaffoldStage = "SCAFFOLD_STAGE"

const setupStageValueConstant = "setup"

// Mode names the amount of work a hook invocation is allowed to perform.
type Mode string

const (
	// ModeBlocked means the scaffold was invoked directly instead of through the wrapper tooling.
	ModeBlocked Mode = "blocked"
	// ModeCleanupOnly limits the run to removing unselected variant files.
	ModeCleanupOnly Mode = "cleanup-only"
	// ModeFullSetup enables cleanup plus remote repository provisioning and the initial push.
	ModeFullSetup Mode = "full-setup"
)

// ResolveMode inspects the environment and returns the mode for this invocation.
// The map takes precedence over the process environment.
func ResolveMode(environment map[string]string) Mode {
	stageValue, stagePresent := environment[EnvScaffoldStage]
	if !stagePresent {
		stageValue, stagePresent = os.LookupEnv(EnvScaffoldStage)
	}
	trimmedStageValue := strings.TrimSpace(stageValue)
	if !stagePresent || len(trimmedStageValue) == 0 {
		return ModeBlocked
	}
	if strings.EqualFold(trimmedStageValue, setupStageValueConstant) {
		return ModeFullSetup
	}
	return ModeCleanupOnly
}
