package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	RunE: instrumented("version", runVersion),
}

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.GetInfo()

	// JSON output
	if versionJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	// Detailed output rides on the global --verbose flag
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Println("\n  ╔══════════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                      [ runsheet ]                            ║")
		fmt.Println("  ║         Event Task Scheduling and Conflict Detection         ║")
		fmt.Println("  ╚══════════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println(info.String())
		return nil
	}

	// Default output (short version only)
	fmt.Printf("runsheet %s\n", info.Short())
	return nil
}
