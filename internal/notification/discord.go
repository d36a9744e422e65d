// Package notification pushes analysis alerts to a Discord webhook.
// Webhook URLs come from the environment; an empty URL disables sending.
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

func alertWebhookURL() string {
	return os.Getenv("DISCORD_ALERT_WEBHOOK_URL")
}

func errorWebhookURL() string {
	return os.Getenv("DISCORD_ERROR_WEBHOOK_URL")
}

func send(url string, message DiscordMessage) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}

// SendHeatAlert notifies the operations channel when an analysis finds a
// severe or critical heat island condition.
func SendHeatAlert(jobID, severity string, intensity float64) error {
	return send(alertWebhookURL(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title: "🔥 Heat Island Alert",
				Description: fmt.Sprintf(
					"Analysis %s detected a %s heat island condition with an intensity of %.1f°C. "+
						"Review the full report and consider activating mitigation measures.",
					jobID, severity, intensity),
				Color: 16711680, // Red color
			},
		},
	})
}

// SendErrorNotification reports a failed analysis run.
func SendErrorNotification(errorMessage string) error {
	return send(errorWebhookURL(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Error Notification",
				Description: fmt.Sprintf("An analysis run failed: %s", errorMessage),
				Color:       16711680, // Red color
			},
		},
	})
}
