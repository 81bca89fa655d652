package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beacon-dev/beacon/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed   = 16711680 // #FF0000 - incident opened
	ColorGreen = 65280    // #00FF00 - incident resolved

	Username = "Beacon Status"
)

func SendIncidentCreatedNotification(page models.StatusPage, incident models.Incident) error {
	if page.DiscordWebhook != "" {
		if err := sendDiscordIncidentCreated(page.DiscordWebhook, page, incident); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if page.SlackWebhook != "" {
		if err := sendSlackIncidentCreated(page.SlackWebhook, page, incident); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func SendIncidentResolvedNotification(page models.StatusPage, incident models.Incident) error {
	if page.DiscordWebhook != "" {
		if err := sendDiscordIncidentResolved(page.DiscordWebhook, page, incident); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if page.SlackWebhook != "" {
		if err := sendSlackIncidentResolved(page.SlackWebhook, page, incident); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func affectedSummary(incident models.Incident) string {
	components, err := incident.Components()

	if err != nil || len(components) == 0 {
		return "Unknown"
	}

	names := make([]string, 0, len(components))

	for _, component := range components {
		names = append(names, component.DisplayName)
	}

	return strings.Join(names, ", ")
}

func sendDiscordIncidentCreated(webhookURL string, page models.StatusPage, incident models.Incident) error {
	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 **INCIDENT OPENED**",
				Description: fmt.Sprintf("**%s**", incident.Title),
				Color:       ColorRed,
				Fields: []DiscordWebhookField{
					{Name: "📊 Affected Components", Value: affectedSummary(incident), Inline: false},
					{Name: "⚠️ Status", Value: "**" + incident.Status + "**", Inline: true},
					{Name: "🔥 Impact", Value: incident.Impact, Inline: true},
					{Name: "⏰ Started At", Value: incident.CreatedAt.Format("2006-01-02 15:04:05 UTC"), Inline: true},
				},
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Status Page: %s", page.Name),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendDiscordIncidentResolved(webhookURL string, page models.StatusPage, incident models.Incident) error {
	resolvedAt := "Unknown"
	duration := "Unknown"

	if incident.ResolvedAt != nil {
		resolvedAt = incident.ResolvedAt.Format("2006-01-02 15:04:05 UTC")
		duration = incident.ResolvedAt.Sub(incident.CreatedAt).Round(time.Second).String()
	}

	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ **INCIDENT RESOLVED**",
				Description: fmt.Sprintf("**%s** has been resolved.", incident.Title),
				Color:       ColorGreen,
				Fields: []DiscordWebhookField{
					{Name: "📊 Affected Components", Value: affectedSummary(incident), Inline: false},
					{Name: "⏰ Started At", Value: incident.CreatedAt.Format("2006-01-02 15:04:05 UTC"), Inline: true},
					{Name: "🏁 Resolved At", Value: resolvedAt, Inline: true},
					{Name: "⏱️ Duration", Value: duration, Inline: true},
				},
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Status Page: %s", page.Name),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendSlackIncidentCreated(webhookURL string, page models.StatusPage, incident models.Incident) error {
	payload := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":rotating_light:",
		Text:      ":rotating_light: *INCIDENT OPENED*",
		Attachments: []SlackAttachment{
			{
				Color: "danger",
				Title: incident.Title,
				Text:  fmt.Sprintf("An incident is affecting %s", affectedSummary(incident)),
				Fields: []SlackField{
					{Title: "Status", Value: incident.Status, Short: true},
					{Title: "Impact", Value: incident.Impact, Short: true},
					{Title: "Started At", Value: incident.CreatedAt.Format("2006-01-02 15:04:05 UTC"), Short: false},
				},
				Footer:    fmt.Sprintf("Status Page: %s", page.Name),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendSlackWebhook(webhookURL, payload)
}

func sendSlackIncidentResolved(webhookURL string, page models.StatusPage, incident models.Incident) error {
	resolvedAt := "Unknown"
	duration := "Unknown"

	if incident.ResolvedAt != nil {
		resolvedAt = incident.ResolvedAt.Format("2006-01-02 15:04:05 UTC")
		duration = incident.ResolvedAt.Sub(incident.CreatedAt).Round(time.Second).String()
	}

	payload := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":white_check_mark:",
		Text:      ":white_check_mark: *INCIDENT RESOLVED*",
		Attachments: []SlackAttachment{
			{
				Color: "good",
				Title: incident.Title,
				Text:  "All affected components are back to normal operation.",
				Fields: []SlackField{
					{Title: "Affected Components", Value: affectedSummary(incident), Short: false},
					{Title: "Resolved At", Value: resolvedAt, Short: true},
					{Title: "Duration", Value: duration, Short: true},
				},
				Footer:    fmt.Sprintf("Status Page: %s", page.Name),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendSlackWebhook(webhookURL, payload)
}

func sendDiscordWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func sendSlackWebhook(webhookURL string, payload SlackWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
