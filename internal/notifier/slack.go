package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const notifyTimeout = 10 * time.Second

// RequiredWebhookPrefix is the scheme every webhook URL must start with.
// Slack incoming webhooks are always HTTPS. Checked at startup by the
// config package and again before every send.
const RequiredWebhookPrefix = "https://"

// Message is the Slack incoming-webhook payload.
type Message struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is one colored block within a [Message].
type Attachment struct {
	Color  string  `json:"color"`
	Fields []Field `json:"fields"`
	Footer string  `json:"footer"`
	Ts     int64   `json:"ts"`
}

// Field is a short titled value rendered inside an [Attachment].
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// statusLabels maps upstream status values to human-readable labels.
// Unknown values fall back to the raw status string.
var statusLabels = map[string]string{
	"operational":          "Operational",
	"partial_outage":       "Partially Re-routed",
	"major_outage":         "Re-routed",
	"degraded_performance": "Degraded Performance",
	"under_maintenance":    "Under Maintenance",
}

// statusMarkers maps upstream status values to Slack emoji markers.
// Unknown values fall back to a generic question mark.
var statusMarkers = map[string]string{
	"operational":          ":white_check_mark:",
	"partial_outage":       ":warning:",
	"major_outage":         ":exclamation::exclamation::exclamation:",
	"degraded_performance": ":zap:",
	"under_maintenance":    ":construction:",
}

// Slack delivers status-change notifications to a Slack incoming webhook.
//
// Delivery failures are self-contained: they are logged and never retried
// or propagated, so a broken webhook cannot stall the watch loop. An
// unset webhook URL turns every Notify into a logged no-op.
type Slack struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	titleCaser cases.Caser
}

// NewSlack creates a [Slack] notifier posting to webhookURL.
// An empty webhookURL is allowed; notifications are then skipped with a
// warning.
func NewSlack(webhookURL string, logger *slog.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: notifyTimeout},
		logger:     logger,
		titleCaser: cases.Title(language.English),
	}
}

// Notify posts one status-change message for a target location.
//
// The outcome is reported only through logs: success at info level,
// any failure (bad webhook, non-200 response, transport error) at error
// level. Notify never returns an error and never retries.
func (s *Slack) Notify(ctx context.Context, location, componentName, status string) {
	if s.webhookURL == "" {
		s.logger.Warn("webhook URL is not set, skipping notification",
			"location", location,
			"status", status,
		)
		return
	}
	if !strings.HasPrefix(s.webhookURL, RequiredWebhookPrefix) {
		s.logger.Error("webhook URL does not start with required prefix, refusing to send",
			"required_prefix", RequiredWebhookPrefix,
		)
		return
	}

	payload := s.buildMessage(location, componentName, status)
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal notification payload", "error", err)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to create webhook request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("failed to send notification", "location", location, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("webhook rejected notification",
			"location", location,
			"status_code", resp.StatusCode,
			"response", strings.TrimSpace(string(respBody)),
		)
		return
	}

	s.logger.Info("notification sent", "location", location, "status", status)
}

// buildMessage assembles the webhook payload for one status change.
func (s *Slack) buildMessage(location, componentName, status string) Message {
	label, ok := statusLabels[status]
	if !ok {
		label = status
	}
	marker, ok := statusMarkers[status]
	if !ok {
		marker = ":question:"
	}

	return Message{
		Text: ":earth_asia: *Status Update*",
		Attachments: []Attachment{
			{
				Color: severityColor(status),
				Fields: []Field{
					{Title: "Location", Value: s.titleCaser.String(location), Short: true},
					{Title: "Component", Value: componentName, Short: true},
					{Title: "Status", Value: fmt.Sprintf("%s %s", marker, label), Short: true},
				},
				Footer: "edgewatch",
				Ts:     time.Now().Unix(),
			},
		},
	}
}

// severityColor maps a status value to a Slack attachment color.
// Only the explicitly listed statuses escalate; everything else,
// including unknown future values, stays "good".
func severityColor(status string) string {
	switch status {
	case "partial_outage", "under_maintenance":
		return "warning"
	case "major_outage", "degraded_performance":
		return "danger"
	default:
		return "good"
	}
}
