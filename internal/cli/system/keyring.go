package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/keyring"
	"github.com/julianstephens/fitlog/internal/remote/postgres"
)

// KeyringAccount selects the keyring entry. It falls back to
// remote.keyring_account and then the default account.
type KeyringAccount struct {
	Account string `help:"Keyring account name (default: remote.keyring_account)." short:"a"`
}

func (a KeyringAccount) resolve(ctx *cli.Context) string {
	if a.Account != "" {
		return a.Account
	}
	if ctx.Config != nil {
		return keyring.Account(ctx.Config.Remote.KeyringAccount)
	}
	return keyring.Account("")
}

// KeyringSetCmd stores the remote connection string in the OS keyring.
type KeyringSetCmd struct {
	KeyringAccount
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is the one place a password may live.
		fmt.Fprintln(ctx.Out, cli.Warning("connection string contains a password, storing it in the encrypted OS keyring"))
	}

	account := cmd.resolve(ctx)
	if err := keyring.Set(account, cmd.ConnectionString); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Success("Connection string stored in OS keyring as %q", account))
	return nil
}

type KeyringGetCmd struct {
	KeyringAccount
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	account := cmd.resolve(ctx)
	connStr, err := keyring.Get(account)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("no connection string found in keyring for %q, use 'fitlog keyring set' to store one", account)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, MaskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct {
	KeyringAccount
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	account := cmd.resolve(ctx)
	err := keyring.Delete(account)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("no connection string found in keyring for %q", account)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Success("Connection string %q deleted from OS keyring", account))
	return nil
}

type KeyringStatusCmd struct {
	KeyringAccount
}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	fmt.Fprintln(ctx.Out, cli.Success("OS keyring is available"))
	account := cmd.resolve(ctx)
	if _, err := keyring.Get(account); err == nil {
		fmt.Fprintln(ctx.Out, cli.Success("Connection string is stored under %q", account))
	} else {
		fmt.Fprintf(ctx.Out, "No connection string stored under %q\n", account)
	}
	return nil
}

// MaskPassword hides the password in a URI or DSN connection string.
func MaskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		scheme, rest, _ := strings.Cut(connStr, "://")
		if at := strings.LastIndex(rest, "@"); at != -1 {
			if user, _, hasPass := strings.Cut(rest[:at], ":"); hasPass {
				return scheme + "://" + user + ":****" + rest[at:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if k, _, ok := strings.Cut(part, "="); ok && strings.EqualFold(k, "password") {
			parts[i] = k + "=****"
		}
	}
	return strings.Join(parts, " ")
}
