package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"twfollow/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage twitter session cookies",
	Long: `Manage stored twitter session cookies.

Cookies are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store twitter session cookies",
	Long: `Store the auth_token and ct0 cookies of a logged-in twitter session.

You will be prompted for:
  - Twitter username (if not provided)
  - auth_token cookie
  - ct0 cookie
  - User Agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  twfollow auth login

  # Login with username
  twfollow auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Remove stored cookies",
	Args:  cobra.ExactArgs(1),
	Run:   runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with masked cookie values.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func credentialManager() *auth.Manager {
	dir, err := auth.DefaultConfigDir()
	if err != nil {
		printer.Error("Failed to locate the config directory", err)
		os.Exit(1)
	}
	manager, err := auth.NewManager(dir)
	if err != nil {
		printer.Error("Failed to initialize credential manager", err)
		os.Exit(1)
	}
	return manager
}

func runLogin(cmd *cobra.Command, args []string) {
	manager := credentialManager()
	reader := bufio.NewReader(os.Stdin)

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	auth.ShowCookieExtractionGuide(os.Stdout)

	fmt.Print("Ready to enter your cookies? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		printer.Plain("\nRun 'twfollow auth login' when you're ready.")
		return
	}

	if name == "" {
		fmt.Print("\nTwitter username: ")
		input, _ := reader.ReadString('\n')
		name = strings.TrimPrefix(strings.TrimSpace(input), "@")
	}
	if name == "" {
		printer.Error("Username is required", nil)
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("\nAccount '%s' already exists. Update cookies? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	printer.Plain("\nEnter your cookie values (they will be hidden as you type):")

	fmt.Print("auth_token cookie value: ")
	authToken, err := readSecret(reader)
	if err != nil {
		printer.Error("Failed to read auth_token", err)
		os.Exit(1)
	}

	fmt.Print("ct0 cookie value: ")
	csrfToken, err := readSecret(reader)
	if err != nil {
		printer.Error("Failed to read ct0", err)
		os.Exit(1)
	}

	fmt.Print("User Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')

	account := &auth.Account{
		Username:     name,
		AuthToken:    authToken,
		CSRFToken:    csrfToken,
		UserAgent:    strings.TrimSpace(userAgent),
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		printer.Error("Failed to store cookies", err)
		os.Exit(1)
	}

	printer.Success(fmt.Sprintf("Account saved: %s", name))
	printer.Plain("\nStart following with:")
	printer.Plain(fmt.Sprintf("  $ twfollow follow -u %s <username>", name))
}

func runLogout(cmd *cobra.Command, args []string) {
	manager := credentialManager()
	if err := manager.Delete(args[0]); err != nil {
		printer.Error("Failed to remove account", err)
		os.Exit(1)
	}
	printer.Success("Account removed: " + args[0])
}

func runList(cmd *cobra.Command, args []string) {
	manager := credentialManager()

	accounts, err := manager.List()
	if err != nil {
		printer.Error("Failed to list accounts", err)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		printer.Info("No stored accounts", "Use 'twfollow auth login' to add an account")
		return
	}

	printer.Highlight("Stored Accounts")
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		printer.Plain(fmt.Sprintf("%d. Username: %s", i+1, sanitized.Username))
		printer.Plain(fmt.Sprintf("   auth_token: %s", sanitized.AuthToken))
		printer.Plain(fmt.Sprintf("   ct0: %s", sanitized.CSRFToken))
		if sanitized.UserAgent != "" {
			printer.Plain(fmt.Sprintf("   User Agent: %s", sanitized.UserAgent))
		}
		printer.Plain(fmt.Sprintf("   Last Modified: %s", sanitized.LastModified.Format("2006-01-02 15:04:05")))
	}
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
