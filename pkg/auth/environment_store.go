package auth

import (
	"os"
	"time"
)

const (
	envConsumerKey       = "TWITTER_API_KEY"
	envConsumerSecret    = "TWITTER_API_SECRET"
	envAccessToken       = "TWITTER_ACCESS_TOKEN"
	envAccessTokenSecret = "TWITTER_ACCESS_TOKEN_SECRET"

	// EnvironmentAccountName names the account built from the environment
	EnvironmentAccountName = "environment"
)

// EnvironmentStore is a read-only CredentialStore over the TWITTER_*
// environment variables
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds an account from the environment. Only the empty name and
// EnvironmentAccountName resolve.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	if name != "" && name != EnvironmentAccountName {
		return nil, ErrCredentialsNotFound
	}

	account := &Account{
		Name:              EnvironmentAccountName,
		ConsumerKey:       os.Getenv(envConsumerKey),
		ConsumerSecret:    os.Getenv(envConsumerSecret),
		AccessToken:       os.Getenv(envAccessToken),
		AccessTokenSecret: os.Getenv(envAccessTokenSecret),
		LastModified:      time.Now(),
	}
	if account.Validate() != nil {
		return nil, ErrCredentialsNotFound
	}
	return account, nil
}

// List returns a single account if the environment is complete
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials are complete
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
