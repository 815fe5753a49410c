package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"entrezharvest/pkg/auth"
)

var (
	// Auth command flags
	loginEmail  string
	loginAPIKey string
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored credentials",
	Long: `Store, inspect or remove the contact email and API key used to identify
this client to the remote service. Credentials live in the system keyring.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials in the system keyring",
	Example: `  # Provide credentials via flags
  entrezharvest auth login --email you@example.org --api-key abc123

  # Or answer the prompts
  entrezharvest auth login`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove credentials from the system keyring",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "contact email")
	authLoginCmd.Flags().StringVar(&loginAPIKey, "api-key", "", "API key (optional)")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	creds := &auth.Credentials{
		Email:  loginEmail,
		APIKey: loginAPIKey,
	}

	reader := bufio.NewReader(os.Stdin)
	if creds.Email == "" {
		fmt.Print("Contact email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		creds.Email = strings.TrimSpace(line)
	}
	if creds.APIKey == "" && !cmd.Flags().Changed("api-key") {
		fmt.Print("API key (optional, press enter to skip): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		creds.APIKey = strings.TrimSpace(line)
	}

	if err := creds.Validate(); err != nil {
		return err
	}

	store := auth.NewKeyringStore()
	if !store.IsAvailable() {
		return errors.New("no system keyring available; set ENTREZHARVEST_EMAIL and ENTREZHARVEST_API_KEY instead")
	}
	if err := store.Save(creds); err != nil {
		return err
	}

	fmt.Println("Credentials stored in system keyring")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	creds, err := auth.Resolve(auth.NewEnvironmentStore(), auth.NewKeyringStore())
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			fmt.Println("No credentials configured")
			fmt.Println("Run 'entrezharvest auth login' or set ENTREZHARVEST_EMAIL")
			return nil
		}
		return err
	}

	fmt.Printf("Email: %s\n", creds.Email)
	if creds.APIKey != "" {
		fmt.Printf("API key: %s...\n", creds.APIKey[:min(4, len(creds.APIKey))])
	} else {
		fmt.Println("API key: not set (lower request rate allowance)")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := auth.NewKeyringStore().Delete(); err != nil {
		return err
	}
	fmt.Println("Credentials removed from system keyring")
	return nil
}
