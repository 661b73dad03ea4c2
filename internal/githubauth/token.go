// Package githubauth resolves GitHub credentials from the process environment.
package githubauth

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	tokenRemediationURLConstant       = "https://github.com/settings/tokens"
	credentialsErrorTemplateConstant  = "a %q environment variable with repository creation permissions is required; create a personal access token at %s"
	committerNameEnvironmentVariable  = "GITHUB_NAME"
	committerEmailEnvironmentVariable = "GITHUB_EMAIL"
	committerNameFallbackConstant     = "Name"
	committerEmailFallbackConstant    = "email@email.com"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// CredentialsError reports a missing credential environment variable.
type CredentialsError struct {
	VariableName string
}

// Error names the missing variable and the remediation URL.
func (credentialsError CredentialsError) Error() string {
	return fmt.Sprintf(credentialsErrorTemplateConstant, credentialsError.VariableName, tokenRemediationURLConstant)
}

// ResolveToken returns the first non-empty GitHub authentication token observed
// in the provided environment map or the process environment.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	for _, key := range tokenPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

// RequireToken resolves the GitHub authentication token or fails with a CredentialsError.
func RequireToken(environment map[string]string) (string, error) {
	token, tokenAvailable := ResolveToken(environment)
	if !tokenAvailable {
		return "", CredentialsError{VariableName: EnvGitHubAPIToken}
	}
	return token, nil
}

// CommitterIdentity resolves the committer name and email, applying scaffold fallbacks when unset.
func CommitterIdentity(environment map[string]string) (string, string) {
	committerName, nameAvailable := lookup(environment, committerNameEnvironmentVariable)
	if !nameAvailable {
		committerName = strings.TrimSpace(os.Getenv(committerNameEnvironmentVariable))
	}
	if len(committerName) == 0 {
		committerName = committerNameFallbackConstant
	}

	committerEmail, emailAvailable := lookup(environment, committerEmailEnvironmentVariable)
	if !emailAvailable {
		committerEmail = strings.TrimSpace(os.Getenv(committerEmailEnvironmentVariable))
	}
	if len(committerEmail) == 0 {
		committerEmail = committerEmailFallbackConstant
	}

	return committerName, committerEmail
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
