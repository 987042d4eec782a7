package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dolphinbot/dolphin/internal/conf"
	"github.com/dolphinbot/dolphin/internal/infra/line"
)

var (
	sendWebhookURL   string
	sendWebhookUser  string
	sendWebhookGroup string
)

var sendWebhookCmd = &cobra.Command{
	Use:   "send-webhook <message>",
	Short: "Post a signed test message event to a running server",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSendWebhook,
}

func init() {
	sendWebhookCmd.Flags().StringVar(&sendWebhookURL, "url", "", "Webhook URL (default http://localhost:$PORT/webhook)")
	sendWebhookCmd.Flags().StringVar(&sendWebhookUser, "user", "test-user-id", "Sender user id")
	sendWebhookCmd.Flags().StringVar(&sendWebhookGroup, "group", "", "Group id; empty sends a direct message")
}

func runSendWebhook(cmd *cobra.Command, args []string) {
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		printFail("Config error: %v", err)
		os.Exit(1)
	}

	url := sendWebhookURL
	if url == "" {
		url = fmt.Sprintf("http://localhost:%s/webhook", cfg.Server.Port)
	}

	message := strings.Join(args, " ")
	body, err := json.Marshal(buildTestWebhook(sendWebhookUser, sendWebhookGroup, message, time.Now()))
	if err != nil {
		printFail("Failed to encode webhook: %v", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		printFail("Failed to create request: %v", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Line.ChannelSecret != "" {
		req.Header.Set(line.SignatureHeader, line.Sign(body, cfg.Line.ChannelSecret))
	}

	fmt.Printf("Sending test message: %q\n", message)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		printFail("Could not connect to %s: %v", url, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", strings.TrimSpace(string(respBody)))

	if resp.StatusCode != http.StatusOK {
		printFail("Webhook failed")
		os.Exit(1)
	}
	printOK("Webhook sent successfully")
}

// buildTestWebhook builds a single text message event as the LINE Platform would send it
func buildTestWebhook(userID, groupID, text string, now time.Time) line.Webhook {
	source := line.Source{Type: "user", UserID: userID}
	if groupID != "" {
		source.Type = "group"
		source.GroupID = groupID
	}

	return line.Webhook{
		Destination: "test-destination",
		Events: []line.Event{
			{
				Type:           "message",
				WebhookEventID: uuid.NewString(),
				Timestamp:      now.UnixMilli(),
				Mode:           "active",
				ReplyToken:     "test-reply-token-" + uuid.NewString(),
				Source:         source,
				Message: &line.EventMessage{
					ID:   "test-message-id",
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
