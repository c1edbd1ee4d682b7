package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"hg-go/internal/app"
	"hg-go/internal/config"
	"hg-go/internal/hg"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config (run `hg config init` first): %w", err)
	}
	return cfg, defaults, nil
}

// withApp builds an HGApp for command, runs fn and closes the app,
// recording fn's error as the outcome of the run.
func withApp(cmd *cobra.Command, command string, fn func(ctx context.Context, a *app.HGApp) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		cfg.Storage.Type = "memory"
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.NewHGApp(ctx, cfg, command)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		a.Fail(err)
		return explain(err)
	}
	return nil
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	var aerr *hg.AnalysisError
	var perr *hg.PlanGenerationError
	switch {
	case errors.Is(err, hg.ErrNoUser):
		return fmt.Errorf("%w (run `hg login EMAIL` or `hg signup EMAIL`)", err)
	case errors.Is(err, hg.ErrCredentialMissing):
		return fmt.Errorf("%w (set %s)", err, config.DefaultAPIKeyEnv)
	case errors.As(err, &aerr), errors.As(err, &perr):
		return fmt.Errorf("%w, please try again", err)
	}
	return err
}

// readPassphrase returns $HG_PASSPHRASE or prompts for it on the terminal.
func readPassphrase(prompt string) (string, error) {
	if p := os.Getenv("HG_PASSPHRASE"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

var rootCmd = &cobra.Command{
	Use:          "hg",
	Short:        "Personal health tracker",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.LogDir = defaults["log_dir"]
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Run `hg init` to prepare storage.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s %s (prefix %q)\n", cfg.Storage.Type, cfg.Storage.DataDir, cfg.Storage.Prefix)
		fmt.Printf("Advisor:    %s %s (key from $%s, set: %t)\n",
			cfg.Advisor.Type, cfg.Advisor.Model, apiKeyEnv(cfg.Advisor), cfg.Advisor.APIKey() != "")
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

func apiKeyEnv(c config.AdvisorConfig) string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	return config.DefaultAPIKeyEnv
}

// init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.InitStorage(cfg); err != nil {
			return err
		}
		fmt.Printf("Storage ready (%s)\n", cfg.Storage.Type)
		return nil
	},
}

// account commands
var signupCmd = &cobra.Command{
	Use:   "signup EMAIL",
	Short: "Register and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		return withApp(cmd, "Signup", func(_ context.Context, a *app.HGApp) error {
			user, err := a.Service().Signup(args[0], name)
			if err != nil {
				return err
			}
			fmt.Printf("Welcome, %s! You are logged in as %s.\n", user.Name, user.Email)
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Login", func(_ context.Context, a *app.HGApp) error {
			user, err := a.Service().Login(args[0])
			if errors.Is(err, hg.ErrUserNotFound) {
				return fmt.Errorf("%w: hg signup %s", err, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Logout", func(_ context.Context, a *app.HGApp) error {
			a.Service().Logout()
			fmt.Println("Logged out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Whoami", func(_ context.Context, a *app.HGApp) error {
			user, err := a.Service().CurrentUser()
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s>  %s\n", user.Name, user.Email, user.ID)
			return nil
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Users", func(_ context.Context, a *app.HGApp) error {
			newRenderer(os.Stdout).Users(a.Service().UserOverviews())
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("ephemeral", false, "Keep data in memory for this run only")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	signupCmd.Flags().String("name", "", "Display name (defaults to \"User\")")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(usersCmd)
}
