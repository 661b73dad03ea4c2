// Package githubapi wraps authenticated calls against the GitHub REST API.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/templatehooks/spinup/internal/githubauth"
)

const (
	// DefaultAPIBaseURL addresses the public GitHub REST API.
	DefaultAPIBaseURL = "https://api.github.com"

	authorizationHeaderNameConstant     = "Authorization"
	authorizationHeaderTemplateConstant = "token %s"
	acceptHeaderNameConstant            = "Accept"
	acceptHeaderDefaultValueConstant    = "application/vnd.github+json"
	contentTypeHeaderNameConstant       = "Content-Type"
	contentTypeJSONValueConstant        = "application/json"
	httpClientNotConfiguredMessage      = "http client not configured"
	requestBuildErrorTemplateConstant   = "unable to build %s request for %s: %w"
	requestSendErrorTemplateConstant    = "%s request to %s failed: %w"
	responseReadErrorTemplateConstant   = "unable to read response from %s: %w"
	payloadEncodeErrorTemplateConstant  = "unable to encode request payload for %s: %w"
	statusErrorTemplateConstant         = "github api returned status %d"
	statusErrorWithBodyTemplateConstant = "github api returned status %d: %s"
	defaultRequestTimeoutConstant       = 30 * time.Second
)

// RequestOptions configures an individual API call.
type RequestOptions struct {
	// JSONBody is marshalled into the request body when non-nil.
	JSONBody any
	// Headers are merged over the client defaults.
	Headers map[string]string
	// SkipStatusCheck suppresses StatusError translation so callers can inspect the raw response.
	SkipStatusCheck bool
}

// Response captures the ephemeral result of an API call.
type Response struct {
	StatusCode int
	Body       []byte
}

// DecodeJSON unmarshals the response body into the supplied target.
func (response Response) DecodeJSON(target any) error {
	return json.Unmarshal(response.Body, target)
}

// StatusError reports a non-success response observed with status checking enabled.
type StatusError struct {
	StatusCode   int
	ResponseBody []byte
}

// Error describes the unexpected status, including the raw body when present.
func (statusError StatusError) Error() string {
	trimmedBody := strings.TrimSpace(string(statusError.ResponseBody))
	if len(trimmedBody) == 0 {
		return fmt.Sprintf(statusErrorTemplateConstant, statusError.StatusCode)
	}
	return fmt.Sprintf(statusErrorWithBodyTemplateConstant, statusError.StatusCode, trimmedBody)
}

// ErrHTTPClientNotConfigured indicates the client was constructed without an HTTP client.
var ErrHTTPClientNotConfigured = errors.New(httpClientNotConfiguredMessage)

// Client issues authenticated requests against a GitHub API base URL.
type Client struct {
	httpClient *http.Client
	apiBaseURL string
	apiToken   string
}

// NewClient constructs a client whose token is resolved from the supplied environment map
// or the process environment, failing with a CredentialsError when no token is configured.
func NewClient(environment map[string]string) (*Client, error) {
	apiToken, tokenError := githubauth.RequireToken(environment)
	if tokenError != nil {
		return nil, tokenError
	}
	return NewClientWithToken(apiToken, DefaultAPIBaseURL, &http.Client{Timeout: defaultRequestTimeoutConstant})
}

// NewClientWithToken constructs a client from explicit collaborators.
func NewClientWithToken(apiToken string, apiBaseURL string, httpClient *http.Client) (*Client, error) {
	trimmedToken := strings.TrimSpace(apiToken)
	if len(trimmedToken) == 0 {
		return nil, githubauth.CredentialsError{VariableName: githubauth.EnvGitHubAPIToken}
	}
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}
	return &Client{
		httpClient: httpClient,
		apiBaseURL: strings.TrimSuffix(apiBaseURL, "/"),
		apiToken:   trimmedToken,
	}, nil
}

// Get issues a GET request against the provided API path.
func (client *Client) Get(executionContext context.Context, apiPath string, options RequestOptions) (Response, error) {
	return client.call(executionContext, http.MethodGet, apiPath, options)
}

// Post issues a POST request against the provided API path.
func (client *Client) Post(executionContext context.Context, apiPath string, options RequestOptions) (Response, error) {
	return client.call(executionContext, http.MethodPost, apiPath, options)
}

// Put issues a PUT request against the provided API path.
func (client *Client) Put(executionContext context.Context, apiPath string, options RequestOptions) (Response, error) {
	return client.call(executionContext, http.MethodPut, apiPath, options)
}

// Patch issues a PATCH request against the provided API path.
func (client *Client) Patch(executionContext context.Context, apiPath string, options RequestOptions) (Response, error) {
	return client.call(executionContext, http.MethodPatch, apiPath, options)
}

func (client *Client) call(executionContext context.Context, httpMethod string, apiPath string, options RequestOptions) (Response, error) {
	requestURL := client.apiBaseURL + apiPath

	var requestBody io.Reader
	if options.JSONBody != nil {
		encodedPayload, encodeError := json.Marshal(options.JSONBody)
		if encodeError != nil {
			return Response{}, fmt.Errorf(payloadEncodeErrorTemplateConstant, apiPath, encodeError)
		}
		requestBody = bytes.NewReader(encodedPayload)
	}

	httpRequest, buildError := http.NewRequestWithContext(executionContext, httpMethod, requestURL, requestBody)
	if buildError != nil {
		return Response{}, fmt.Errorf(requestBuildErrorTemplateConstant, httpMethod, apiPath, buildError)
	}

	httpRequest.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(authorizationHeaderTemplateConstant, client.apiToken))
	httpRequest.Header.Set(acceptHeaderNameConstant, acceptHeaderDefaultValueConstant)
	if options.JSONBody != nil {
		httpRequest.Header.Set(contentTypeHeaderNameConstant, contentTypeJSONValueConstant)
	}
	for headerName, headerValue := range options.Headers {
		httpRequest.Header.Set(headerName, headerValue)
	}

	httpResponse, sendError := client.httpClient.Do(httpRequest)
	if sendError != nil {
		return Response{}, fmt.Errorf(requestSendErrorTemplateConstant, httpMethod, apiPath, sendError)
	}
	defer httpResponse.Body.Close()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return Response{}, fmt.Errorf(responseReadErrorTemplateConstant, apiPath, readError)
	}

	response := Response{StatusCode: httpResponse.StatusCode, Body: responseBody}

	if !options.SkipStatusCheck && (httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices) {
		return response, StatusError{StatusCode: httpResponse.StatusCode, ResponseBody: responseBody}
	}

	return response, nil
}
