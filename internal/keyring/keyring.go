// Package keyring keeps remote connection strings in the OS keyring. Each
// backend is stored under its own account name, so one install can hold
// credentials for several remotes.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/fitlog/internal/constants"
)

var (
	ErrNotFound           = errors.New("credentials not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrInvalidAccount     = errors.New("invalid keyring account")
)

// Account returns name, or the default account when name is empty.
func Account(name string) string {
	if name == "" {
		return constants.DefaultKeyringUser
	}
	return name
}

// ValidateAccount rejects names the platform keyrings handle badly.
func ValidateAccount(name string) error {
	if strings.TrimSpace(name) != name || strings.ContainsAny(name, "\n\r\t") {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, name)
	}
	return nil
}

// Get returns the connection string stored for account.
func Get(account string) (string, error) {
	connStr, err := keyring.Get(constants.AppName, Account(account))
	if err != nil {
		return "", classify(err, "read")
	}
	return connStr, nil
}

func Set(account, connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := ValidateAccount(account); err != nil {
		return err
	}
	return classify(keyring.Set(constants.AppName, Account(account), connStr), "store")
}

func Delete(account string) error {
	return classify(keyring.Delete(constants.AppName, Account(account)), "delete")
}

// IsAvailable is a best-effort check that the OS keyring answers.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-check")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func classify(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: failed to %s credentials: %v", ErrKeyringUnavailable, action, err)
	}
}
