// Package provision creates and configures remote GitHub repositories for freshly rendered projects.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/templatehooks/spinup/internal/githubapi"
)

const (
	authenticatedUserPathConstant         = "/user"
	userRepositoriesPathConstant          = "/user/repos"
	organizationRepositoriesPathTemplate  = "/orgs/%s/repos"
	branchProtectionPathTemplateConstant  = "/repos/%s/%s/branches/%s/protection"
	repositoryURLTemplateConstant         = "https://github.com/%s/%s.git"
	repositoryExistsMessageTemplate       = "remote repository already exists at %s"
	creationFailureOutputTemplateConstant = "An error happened during repository creation - %q\n"
	clientNotConfiguredMessageConstant    = "github api client not configured"
	acceptHeaderNameConstant              = "Accept"
	branchProtectionPreviewMediaType      = "application/vnd.github.loki-preview+json"

	// repositoryExistsAPIMessageConstant is the literal message GitHub returns for
	// creation conflicts; classifyCreationResponse isolates the dependency on this wording.
	repositoryExistsAPIMessageConstant = "Repository creation failed."
)

// ErrClientNotConfigured indicates the service was constructed without an API client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// RemoteRepositoryExistsError signals that the remote repository already exists.
type RemoteRepositoryExistsError struct {
	Organization   string
	RepositoryName string
}

// Error names the expected repository URL so callers can surface it directly.
func (existsError RemoteRepositoryExistsError) Error() string {
	return fmt.Sprintf(repositoryExistsMessageTemplate, existsError.RepositoryURL())
}

// RepositoryURL returns the clone URL the existing repository is expected to live at.
func (existsError RemoteRepositoryExistsError) RepositoryURL() string {
	return fmt.Sprintf(repositoryURLTemplateConstant, existsError.Organization, existsError.RepositoryName)
}

// RepositoryOptions describes the remote repository to create.
type RepositoryOptions struct {
	Name               string
	Description        string
	DisableSquashMerge bool
	DisableMergeCommit bool
	DisableRebaseMerge bool
	EnableWiki         bool
}

// DefaultRepositoryOptions mirrors the scaffold defaults: squash and rebase
// merging disabled, merge commits allowed, wiki off.
func DefaultRepositoryOptions(repositoryName string, description string) RepositoryOptions {
	return RepositoryOptions{
		Name:               repositoryName,
		Description:        description,
		DisableSquashMerge: true,
		DisableMergeCommit: false,
		DisableRebaseMerge: true,
		EnableWiki:         false,
	}
}

// BranchProtectionRules carries the subset of the branch protection API payload the scaffold configures.
type BranchProtectionRules struct {
	RequiredPullRequestReviews *RequiredPullRequestReviews `json:"required_pull_request_reviews"`
	EnforceAdmins              bool                        `json:"enforce_admins"`
	Restrictions               *Restrictions               `json:"restrictions"`
	RequiredStatusChecks       *RequiredStatusChecks       `json:"required_status_checks"`
}

// RequiredPullRequestReviews configures review requirements for a protected branch.
type RequiredPullRequestReviews struct {
	RequiredApprovingReviewCount int `json:"required_approving_review_count"`
}

// Restrictions limits who may push to a protected branch.
type Restrictions struct {
	Users []string `json:"users"`
	Teams []string `json:"teams"`
}

// RequiredStatusChecks configures required status checks for a protected branch.
type RequiredStatusChecks struct {
	Strict   bool     `json:"strict"`
	Contexts []string `json:"contexts"`
}

// APIClient is the subset of githubapi.Client the provisioner requires.
type APIClient interface {
	Get(executionContext context.Context, apiPath string, options githubapi.RequestOptions) (githubapi.Response, error)
	Post(executionContext context.Context, apiPath string, options githubapi.RequestOptions) (githubapi.Response, error)
	Put(executionContext context.Context, apiPath string, options githubapi.RequestOptions) (githubapi.Response, error)
}

// Service provisions remote repositories under an organization or the authenticated user.
type Service struct {
	client       APIClient
	organization string
	errorWriter  io.Writer
}

// NewService constructs a provisioning service for the supplied organization.
func NewService(client APIClient, organization string, errorWriter io.Writer) (*Service, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	return &Service{client: client, organization: organization, errorWriter: errorWriter}, nil
}

// CreateRepository creates the remote repository, signaling RemoteRepositoryExistsError for creation conflicts.
func (service *Service) CreateRepository(executionContext context.Context, options RepositoryOptions) error {
	creationPath, pathError := service.resolveCreationPath(executionContext)
	if pathError != nil {
		return pathError
	}

	creationPayload := map[string]any{
		"name":               options.Name,
		"description":        options.Description,
		"private":            true,
		"has_wiki":           options.EnableWiki,
		"allow_squash_merge": !options.DisableSquashMerge,
		"allow_merge_commit": !options.DisableMergeCommit,
		"allow_rebase_merge": !options.DisableRebaseMerge,
	}

	creationResponse, creationError := service.client.Post(executionContext, creationPath, githubapi.RequestOptions{
		JSONBody:        creationPayload,
		SkipStatusCheck: true,
	})
	if creationError != nil {
		return creationError
	}

	switch classifyCreationResponse(creationResponse) {
	case creationOutcomeCreated:
		return nil
	case creationOutcomeAlreadyExists:
		return RemoteRepositoryExistsError{Organization: service.organization, RepositoryName: options.Name}
	default:
		if service.errorWriter != nil {
			fmt.Fprintf(service.errorWriter, creationFailureOutputTemplateConstant, strings.TrimSpace(string(creationResponse.Body)))
		}
		return githubapi.StatusError{StatusCode: creationResponse.StatusCode, ResponseBody: creationResponse.Body}
	}
}

// ConfigureBranchProtection applies the supplied protection rules to the named branch.
func (service *Service) ConfigureBranchProtection(executionContext context.Context, repositoryName string, branchName string, rules BranchProtectionRules) error {
	protectionPath := fmt.Sprintf(branchProtectionPathTemplateConstant, service.organization, repositoryName, branchName)
	_, protectionError := service.client.Put(executionContext, protectionPath, githubapi.RequestOptions{
		JSONBody: rules,
		Headers:  map[string]string{acceptHeaderNameConstant: branchProtectionPreviewMediaType},
	})
	return protectionError
}

// resolveCreationPath selects the personal endpoint when the authenticated login matches the organization.
func (service *Service) resolveCreationPath(executionContext context.Context) (string, error) {
	userResponse, userError := service.client.Get(executionContext, authenticatedUserPathConstant, githubapi.RequestOptions{})
	if userError != nil {
		return "", userError
	}

	var authenticatedUser struct {
		Login string `json:"login"`
	}
	if decodeError := userResponse.DecodeJSON(&authenticatedUser); decodeError != nil {
		return "", decodeError
	}

	if strings.EqualFold(authenticatedUser.Login, service.organization) {
		return userRepositoriesPathConstant, nil
	}
	return fmt.Sprintf(organizationRepositoriesPathTemplate, service.organization), nil
}

type creationOutcome int

const (
	creationOutcomeCreated creationOutcome = iota
	creationOutcomeAlreadyExists
	creationOutcomeFailed
)

// classifyCreationResponse maps a creation response onto the closed set of provisioning outcomes.
func classifyCreationResponse(response githubapi.Response) creationOutcome {
	if response.StatusCode == http.StatusCreated {
		return creationOutcomeCreated
	}

	var responsePayload struct {
		Message string `json:"message"`
	}
	decodeError := response.DecodeJSON(&responsePayload)

	if response.StatusCode == http.StatusUnprocessableEntity && decodeError == nil && responsePayload.Message == repositoryExistsAPIMessageConstant {
		return creationOutcomeAlreadyExists
	}
	return creationOutcomeFailed
}
