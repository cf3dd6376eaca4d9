package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/forest-guardian/landwatch/internal/properties"
)

const (
	colorRed   = 16711680
	colorGreen = 65280
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields,omitempty"`
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Discord posts run summaries to webhooks. An empty URL disables that kind
// of notification.
type Discord struct {
	errorURL   string
	successURL string
	client     *http.Client
}

func NewDiscord(cfg *properties.Config) *Discord {
	return &Discord{
		errorURL:   cfg.Notifications.DiscordErrorURL,
		successURL: cfg.Notifications.DiscordSuccessURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *Discord) SendError(errorMessage string) error {
	return d.send(d.errorURL, DiscordEmbed{
		Title:       "🚨 Error Notification",
		Description: fmt.Sprintf("Landwatch run failed.\n\n%s", errorMessage),
		Color:       colorRed,
	})
}

func (d *Discord) SendSuccess(successMessage string, fields ...DiscordField) error {
	return d.send(d.successURL, DiscordEmbed{
		Title:       "✅ Success Notification",
		Description: successMessage,
		Color:       colorGreen,
		Fields:      fields,
	})
}

func (d *Discord) send(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	resp, err := d.client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}
