// Package secrets wraps the OS keychain. Nothing sensitive ever lands in
// config.yml; the config only names the keychain accounts.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"jobtrack-engine/internal/config"
)

const (
	// groups this app's secrets in the OS keychain
	KeyringService = "jobtrack"

	// env override for the search API key, mostly for headless setups
	SearchKeyEnv = "JOBTRACK_SEARCH_API_KEY"
)

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", errors.New("IMAP password not found (set it in the keychain)")
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"jobtrack:imap:%s@%s",
		cfg.Email.Username,
		cfg.Email.IMAPHost,
	)
}

// GetSearchAPIKey resolves the optional job-search API key: env first, then
// keychain. An empty result just disables the search step, never an error.
func GetSearchAPIKey(cfg config.Config) string {
	if k := strings.TrimSpace(os.Getenv(SearchKeyEnv)); k != "" {
		return k
	}
	account := strings.TrimSpace(cfg.Search.KeyringAccount)
	if account == "" {
		return ""
	}
	k, err := keyring.Get(KeyringService, account)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(k)
}

// SetSearchAPIKey stores the key under the configured keychain account.
func SetSearchAPIKey(cfg config.Config, key string) error {
	account := strings.TrimSpace(cfg.Search.KeyringAccount)
	if account == "" {
		return errors.New("search.keyring_account is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, account, key)
}
