package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
	"github.com/recipebox-dev/recipebox/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd(g *Globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the recipebox server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app) error {
				return runLogin(cmd.Context(), cmd.OutOrStdout(), a, email, password)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set RECIPEBOX_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set RECIPEBOX_PASSWORD, will prompt if not provided)")

	return cmd
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(g *Globals) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app) error {
				return runRegister(cmd.Context(), cmd.OutOrStdout(), a, name, email, password)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set RECIPEBOX_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set RECIPEBOX_PASSWORD, will prompt if not provided)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// resolveCredentials fills email and password from the environment, prompting for the
// password when stdin is a terminal
func resolveCredentials(out io.Writer, email, password string) (string, string, error) {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("RECIPEBOX_EMAIL")
	}
	if password == "" {
		password = os.Getenv("RECIPEBOX_PASSWORD")
	}

	if email == "" {
		return "", "", fmt.Errorf("email is required (use --email flag or RECIPEBOX_EMAIL env var)")
	}

	if password == "" {
		if !isInteractive() {
			return "", "", fmt.Errorf("password is required in non-interactive mode (use --password flag or RECIPEBOX_PASSWORD env var)")
		}
		fmt.Fprint(out, "Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(out) // New line after password input
	}

	return strings.TrimSpace(email), password, nil
}

func runLogin(ctx context.Context, out io.Writer, a *app, email, password string) error {
	email, password, err := resolveCredentials(out, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Logging in to %s...\n", a.cfg.ServerURL)

	loginResp, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return completeLogin(ctx, out, a, loginResp)
}

func runRegister(ctx context.Context, out io.Writer, a *app, name, email, password string) error {
	email, password, err := resolveCredentials(out, email, password)
	if err != nil {
		return err
	}

	loginResp, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	return completeLogin(ctx, out, a, loginResp)
}

// completeLogin persists the new session and makes it current
func completeLogin(ctx context.Context, out io.Writer, a *app, resp *client.LoginResponse) error {
	state := session.State{
		Token:  resp.Token,
		Name:   resp.User.Name,
		Email:  resp.User.Email,
		UserID: resp.User.ID,
	}
	if err := a.store.Login(ctx, state); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s (%s)\n", state.Name, state.Email)

	return nil
}
