package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dolphinbot/dolphin/internal/conf"
	"github.com/dolphinbot/dolphin/internal/infra/line"
)

var pushCmd = &cobra.Command{
	Use:   "push <to> <message>",
	Short: "Send a push message to a user or group",
	Args:  cobra.MinimumNArgs(2),
	Run:   runPush,
}

func runPush(cmd *cobra.Command, args []string) {
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		printFail("Config error: %v", err)
		os.Exit(1)
	}
	if cfg.Line.ChannelAccessToken == "" {
		printFail("LINE_CHANNEL_ACCESS_TOKEN must be set")
		os.Exit(1)
	}

	to := args[0]
	message := strings.Join(args[1:], " ")

	client := line.NewClient(cfg.Line.ChannelAccessToken,
		line.WithAPIBase(cfg.Line.APIBase),
		line.WithTimeout(cfg.Line.Timeout),
	)

	if err := client.Push(context.Background(), to, message); err != nil {
		printFail("Push failed: %v", err)
		os.Exit(1)
	}

	printOK("Message sent to %s", to)
}
