package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/cli/commands"
)

var version = "dev" // Will be set during build

var globals commands.Globals

var rootCmd = &cobra.Command{
	Use:   "recipebox",
	Short: "Recipebox - share and find recipes",
	Long: `Recipebox CLI - browse, write and like recipes from the terminal.

Point it at a server with 'recipebox use <url>', then 'recipebox login'.
The session is kept between runs (see --session-backend on 'use').`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globals.Ephemeral, "ephemeral", false, "Keep the session in memory for this run only")

	rootCmd.AddCommand(commands.NewVersionCmd(version))

	// Add all subcommands
	rootCmd.AddCommand(commands.NewUseCmd())
	rootCmd.AddCommand(commands.NewLoginCmd(&globals))
	rootCmd.AddCommand(commands.NewRegisterCmd(&globals))
	rootCmd.AddCommand(commands.NewLogoutCmd(&globals))
	rootCmd.AddCommand(commands.NewWhoamiCmd(&globals))
	rootCmd.AddCommand(commands.NewListCmd(&globals))
	rootCmd.AddCommand(commands.NewShowCmd(&globals))
	rootCmd.AddCommand(commands.NewLikeCmd(&globals))
	rootCmd.AddCommand(commands.NewCreateCmd(&globals))
	rootCmd.AddCommand(commands.NewEditCmd(&globals))
	rootCmd.AddCommand(commands.NewDeleteCmd(&globals))
	rootCmd.AddCommand(commands.NewBrowseCmd(&globals))
	rootCmd.AddCommand(commands.NewDispatchCmd(&globals))
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
