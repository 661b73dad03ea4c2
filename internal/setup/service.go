// Package setup orchestrates remote repository provisioning and the initial push for a rendered project.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/templatehooks/spinup/internal/bootstrap"
	"github.com/templatehooks/spinup/internal/githubauth"
	"github.com/templatehooks/spinup/internal/provision"
)

const (
	provisionerNotConfiguredMessage = "repository provisioner not configured"
	pusherNotConfiguredMessage      = "push workflow not configured"
	repositoryURLTemplateConstant   = "https://github.com/%s/%s.git"

	creatingRepositoryTemplateConstant = "Creating remote repository %s\n"
	pushingRepositoryTemplateConstant  = "Pushing initial commit to %s\n"
	protectingBranchTemplateConstant   = "Protecting branch %s\n"
	completionMessageTemplateConstant  = "Repository %s is ready at %s\n"
	existingRepositoryPromptTemplate   = "Remote repository %s already exists. Push the initial commit to it anyway?"
	requiredReviewCountDefaultConstant = 1
)

// Configuration errors reported by NewService.
var (
	ErrProvisionerNotConfigured = errors.New(provisionerNotConfiguredMessage)
	ErrPusherNotConfigured      = errors.New(pusherNotConfiguredMessage)
)

// Provisioner creates the remote repository.
type Provisioner interface {
	CreateRepository(executionContext context.Context, options provision.RepositoryOptions) error
}

// ProtectionConfigurer applies branch protection rules to the remote repository.
type ProtectionConfigurer interface {
	ConfigureBranchProtection(executionContext context.Context, repositoryName string, branchName string, rules provision.BranchProtectionRules) error
}

// Pusher initializes the local repository and pushes the first commit.
type Pusher interface {
	PushInitialRepository(executionContext context.Context, options bootstrap.PushOptions) error
}

// Prompter asks the operator a yes/no question and reports whether the
// default answer was chosen. The service wires prompts whose default
// declines the action, so a kept default means "do not proceed".
type Prompter interface {
	Confirm(message string) (bool, error)
}

// Dependencies carries the collaborators the setup service drives.
type Dependencies struct {
	Provisioner          Provisioner
	Pusher               Pusher
	ProtectionConfigurer ProtectionConfigurer
	Prompter             Prompter
	Output               io.Writer
	Errors               io.Writer
	Environment          map[string]string
}

// Service runs the remote half of the post-generation hook.
type Service struct {
	dependencies Dependencies
}

// NewService validates the collaborators and constructs the setup service.
// ProtectionConfigurer and Prompter may be nil when the corresponding
// configuration flags are off.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	if dependencies.Pusher == nil {
		return nil, ErrPusherNotConfigured
	}
	if dependencies.Output == nil {
		dependencies.Output = io.Discard
	}
	if dependencies.Errors == nil {
		dependencies.Errors = io.Discard
	}
	return &Service{dependencies: dependencies}, nil
}

// Run provisions the remote repository, pushes the initial commit, and
// optionally protects the default branch. The credential check runs before
// any remote call so a missing token fails fast.
func (service *Service) Run(executionContext context.Context, project ProjectConfiguration, configuration Configuration) error {
	if _, tokenError := githubauth.RequireToken(service.dependencies.Environment); tokenError != nil {
		return tokenError
	}

	repositoryURL := fmt.Sprintf(repositoryURLTemplateConstant, project.Organization, project.Repository)

	fmt.Fprintf(service.dependencies.Output, creatingRepositoryTemplateConstant, repositoryURL)
	creationError := service.dependencies.Provisioner.CreateRepository(executionContext, provision.DefaultRepositoryOptions(project.Repository, project.Description))
	if creationError != nil {
		var existsError provision.RemoteRepositoryExistsError
		if !errors.As(creationError, &existsError) {
			return creationError
		}
		pushAnyway, promptError := service.confirmExistingRepository(configuration, existsError)
		if promptError != nil {
			return promptError
		}
		if !pushAnyway {
			return existsError
		}
	}

	fmt.Fprintf(service.dependencies.Output, pushingRepositoryTemplateConstant, repositoryURL)
	pushError := service.dependencies.Pusher.PushInitialRepository(executionContext, bootstrap.PushOptions{
		Organization:   project.Organization,
		RepositoryName: project.Repository,
		CommitMessages: configuration.CommitMessages,
		RemoteName:     configuration.RemoteName,
		DefaultBranch:  configuration.DefaultBranch,
	})
	if pushError != nil {
		return pushError
	}

	if configuration.BranchProtection.Enabled && service.dependencies.ProtectionConfigurer != nil {
		fmt.Fprintf(service.dependencies.Output, protectingBranchTemplateConstant, configuration.DefaultBranch)
		protectionError := service.dependencies.ProtectionConfigurer.ConfigureBranchProtection(
			executionContext,
			project.Repository,
			configuration.DefaultBranch,
			branchProtectionRules(configuration.BranchProtection),
		)
		if protectionError != nil {
			return protectionError
		}
	}

	fmt.Fprintf(service.dependencies.Output, completionMessageTemplateConstant, project.Repository, repositoryURL)
	return nil
}

func (service *Service) confirmExistingRepository(configuration Configuration, existsError provision.RemoteRepositoryExistsError) (bool, error) {
	if !configuration.PromptOnExistingRepository || service.dependencies.Prompter == nil {
		return false, nil
	}
	promptMessage := fmt.Sprintf(existingRepositoryPromptTemplate, existsError.RepositoryURL())
	defaultKept, promptError := service.dependencies.Prompter.Confirm(promptMessage)
	if promptError != nil {
		return false, promptError
	}
	return !defaultKept, nil
}

func branchProtectionRules(configuration BranchProtectionConfiguration) provision.BranchProtectionRules {
	return provision.BranchProtectionRules{
		RequiredPullRequestReviews: &provision.RequiredPullRequestReviews{RequiredApprovingReviewCount: requiredReviewCountDefaultConstant},
		EnforceAdmins:              configuration.EnforceAdmins,
	}
}
