package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"golang.org/x/time/rate"
)

const (
	embedColor        = 0xFF0000
	uncategorized     = "Uncategorized"
	maxErrorBodyBytes = 512
)

// ErrWebhookStatus marks a non-2xx answer from Discord.
var ErrWebhookStatus = errors.New("discord webhook returned non-success status")

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Footer    embedFooter  `json:"footer"`
	Timestamp string       `json:"timestamp,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds"`
}

// Webhook posts first-blood embeds to a Discord channel webhook.
type Webhook struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhook builds a client that sends at most perMinute posts per minute
// and gives up on each one after timeout.
func NewWebhook(url string, timeout time.Duration, perMinute int) *Webhook {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Webhook{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5),
	}
}

// Deliver posts one embed for ev. Waiting for the rate limiter counts
// against ctx.
func (w *Webhook) Deliver(ctx context.Context, ev ledgerdomain.FirstSolve) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}

	body, err := json.Marshal(webhookPayload{Embeds: []embed{firstBloodEmbed(ev)}})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%w: %d %s", ErrWebhookStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

// firstBloodEmbed renders ev the way the channel expects it.
func firstBloodEmbed(ev ledgerdomain.FirstSolve) embed {
	category := ev.Category
	if category == "" {
		category = uncategorized
	}
	return embed{
		Title: "First Blood!",
		Color: embedColor,
		Fields: []embedField{
			{Name: "Challenge", Value: ev.ChallengeName, Inline: true},
			{Name: "Class", Value: ev.CohortName, Inline: true},
			{Name: "Points", Value: strconv.Itoa(ev.Points), Inline: true},
			{Name: "Category", Value: category, Inline: true},
			{Name: "Solver", Value: ev.SolverName, Inline: true},
		},
		Footer:    embedFooter{Text: fmt.Sprintf("%s are the first to solve this challenge!", ev.CohortName)},
		Timestamp: ev.SolvedAt.UTC().Format(time.RFC3339),
	}
}
