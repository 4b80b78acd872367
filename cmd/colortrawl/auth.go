package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"colortrawl/pkg/auth"
	"colortrawl/pkg/ui"
)

var logoutAll bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials",
	Long: `Manage stored OAuth 1.0a credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store API credentials securely",
	Long: `Store a consumer key and secret with an access token and secret under a
name. Secrets are read without echo when stdin is a terminal.`,
	Example: `  # Interactive login
  colortrawl auth login

  # Store under a name
  colortrawl auth login bot`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove stored credentials",
	Example: `  colortrawl auth logout bot
  colortrawl auth logout --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Long:  `List stored accounts with masked credentials.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored account")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	account := &auth.Account{}
	if len(args) > 0 {
		account.Name = strings.TrimSpace(args[0])
	}
	if account.Name == "" {
		if account.Name, err = prompt(out, reader, "Account name: "); err != nil {
			return err
		}
	}
	if account.Name == "" {
		return fmt.Errorf("account name is required")
	}

	if existing, _ := manager.Retrieve(account.Name); existing != nil {
		answer, _ := prompt(out, reader, fmt.Sprintf("Account '%s' already exists. Update credentials? (y/N): ", account.Name))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fields := []struct {
		label  string
		target *string
		secret bool
	}{
		{"API key", &account.ConsumerKey, false},
		{"API secret", &account.ConsumerSecret, true},
		{"Access token", &account.AccessToken, false},
		{"Access token secret", &account.AccessTokenSecret, true},
	}
	for _, f := range fields {
		var value string
		if f.secret {
			value, err = readSecret(out, reader, f.label+": ")
		} else {
			value, err = prompt(out, reader, f.label+": ")
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(f.label), err)
		}
		*f.target = value
	}

	if err := manager.Store(account); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Stored credentials for '%s'", account.Name))
	ui.PrintInfo("Use with", "colortrawl trawl --account "+account.Name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		accounts, err := manager.List()
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if account.Name == auth.EnvironmentAccountName {
				continue
			}
			if err := manager.Delete(account.Name); err != nil {
				ui.PrintWarning("Failed to remove "+account.Name, err)
				continue
			}
			ui.PrintSuccess("Removed " + account.Name)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("specify an account name or --all")
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Removed credentials for '%s'", args[0]))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts. Run 'colortrawl auth login' to add one")
		return nil
	}

	printAccounts(cmd.OutOrStdout(), accounts)
	return nil
}

func printAccounts(w io.Writer, accounts []*auth.Account) {
	for _, account := range accounts {
		masked := auth.SanitizeAccount(account)
		fmt.Fprintf(w, "%s\n", ui.Cyan(masked.Name))
		fmt.Fprintf(w, "  API key:      %s\n", masked.ConsumerKey)
		fmt.Fprintf(w, "  Access token: %s\n", masked.AccessToken)
		if !masked.LastModified.IsZero() && masked.Name != auth.EnvironmentAccountName {
			fmt.Fprintf(w, "  Modified:     %s\n", ui.Dim(masked.LastModified.Format("2006-01-02 15:04")))
		}
	}
}

func prompt(w io.Writer, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readSecret reads without echo on a terminal and falls back to a plain line
func readSecret(w io.Writer, reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(w, label)
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	return prompt(w, reader, label)
}
