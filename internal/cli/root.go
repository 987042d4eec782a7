package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/dolphinbot/dolphin/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		"     _       _       _     _\n" +
		"  __| | ___ | |_ __ | |__ (_)_ __\n" +
		" / _` |/ _ \\| | '_ \\| '_ \\| | '_ \\\n" +
		"| (_| | (_) | | |_) | | | | | | | |\n" +
		" \\__,_|\\___/|_| .__/|_| |_|_|_| |_|\n" +
		"              |_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "dolphin",
	Short: "Dolphin - LINE webhook bot",
	Long:  color.CyanString(logo) + "\nA rule-based LINE Messaging API bot with group broadcasts.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file
		_ = godotenv.Load()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(sendWebhookCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("Dolphin Version")
		fmt.Printf("Version: %s\n", version)
	},
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

func printOK(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓ "+format, a...))
}

func printFail(format string, a ...interface{}) {
	fmt.Println(color.RedString("✗ "+format, a...))
}
