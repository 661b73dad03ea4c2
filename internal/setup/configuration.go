package setup

const (
	defaultRemoteNameConstant    = "origin"
	defaultDefaultBranchConstant = "main"
)

// defaultCommitMessages seed the initial commit when configuration supplies none.
var defaultCommitMessages = []string{"Initial scaffolding [skip ci]", "Type: trivial"}

// ProjectConfiguration identifies the rendered project and its remote home.
type ProjectConfiguration struct {
	Organization  string `mapstructure:"organization"`
	Repository    string `mapstructure:"repository"`
	Module        string `mapstructure:"module"`
	Description   string `mapstructure:"description"`
	IncludeSample bool   `mapstructure:"include_sample"`
}

// BranchProtectionConfiguration feature-flags protection of the default branch.
type BranchProtectionConfiguration struct {
	Enabled       bool `mapstructure:"enabled"`
	EnforceAdmins bool `mapstructure:"enforce_admins"`
}

// Configuration controls how the setup service provisions and pushes the repository.
type Configuration struct {
	RemoteName                 string                        `mapstructure:"remote_name"`
	DefaultBranch              string                        `mapstructure:"default_branch"`
	CommitMessages             []string                      `mapstructure:"commit_messages"`
	PromptOnExistingRepository bool                          `mapstructure:"prompt_on_existing_repository"`
	BranchProtection           BranchProtectionConfiguration `mapstructure:"branch_protection"`
}

// DefaultConfiguration returns the setup defaults applied before file and environment overrides.
func DefaultConfiguration() Configuration {
	return Configuration{
		RemoteName:     defaultRemoteNameConstant,
		DefaultBranch:  defaultDefaultBranchConstant,
		CommitMessages: append([]string(nil), defaultCommitMessages...),
	}
}
