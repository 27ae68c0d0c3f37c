package repository

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for the OS credential store
	credentialService = "cursor-rules"
	// Key for the GitHub Personal Access Token
	githubTokenKey = "github_pat"
)

// CredentialManager handles storage and retrieval of the GitHub token in the
// OS credential store. The environment variable GITHUB_TOKEN always takes
// precedence over the store; the store exists so the token does not have to
// live in shell profiles on developer machines.
type CredentialManager struct {
	service string
}

// NewCredentialManager creates a credential manager bound to the service's
// keychain entry.
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{service: credentialService}
}

// StoreGitHubToken stores a GitHub Personal Access Token in the OS
// credential store.
func (cm *CredentialManager) StoreGitHubToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := keyring.Set(cm.service, githubTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	return nil
}

// GetGitHubToken retrieves the stored token. Returns an empty string without
// error when no token is stored.
func (cm *CredentialManager) GetGitHubToken() (string, error) {
	token, err := keyring.Get(cm.service, githubTokenKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to retrieve token from credential store: %w", err)
	}
	return strings.TrimSpace(token), nil
}

// DeleteGitHubToken removes the stored token. Deleting a missing token is
// not an error.
func (cm *CredentialManager) DeleteGitHubToken() error {
	err := keyring.Delete(cm.service, githubTokenKey)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

// ResolveToken returns the token the source should authenticate with: the
// configured one when set, otherwise whatever the credential store holds.
// Credential-store failures degrade to anonymous access rather than erroring,
// since the remote repository may well be public.
func ResolveToken(configured string) string {
	if configured != "" {
		return configured
	}
	token, err := NewCredentialManager().GetGitHubToken()
	if err != nil {
		return ""
	}
	return token
}
