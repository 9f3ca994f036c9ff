package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
	"github.com/recipebox-dev/recipebox/internal/cli/userconfig"
)

// NewVersionCmd creates the version command. It also reports the configured server's
// version and warns when the two differ.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), cmd.OutOrStdout(), version)
		},
	}
}

func runVersion(ctx context.Context, out io.Writer, version string) error {
	fmt.Fprintf(out, "recipebox version %s\n", version)

	cfg, err := userconfig.Load()
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	health, err := client.New(cfg.ServerURL, nil).Health(ctx)
	if err != nil {
		fmt.Fprintf(out, "server %s: unreachable\n", cfg.ServerURL)
		return nil
	}

	fmt.Fprintf(out, "server %s: version %s\n", cfg.ServerURL, health.Version)
	if versionsDiffer(version, health.Version) {
		fmt.Fprintln(out, "Warning: client and server versions differ")
	}
	return nil
}

// versionsDiffer compares release versions, ignoring a leading "v". Dev builds never differ.
func versionsDiffer(a, b string) bool {
	a = strings.TrimPrefix(a, "v")
	b = strings.TrimPrefix(b, "v")
	if a == "dev" || b == "dev" || a == "" || b == "" {
		return false
	}
	return a != b
}
