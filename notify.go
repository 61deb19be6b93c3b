package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Notifier alerts a human when the bot cannot recover on its own. Delivery
// is fire-and-forget: failures are logged and swallowed, never propagated,
// so a dead notification channel can't stall a checkout.
type Notifier interface {
	Notify(message, attachmentPath string)
}

// buildNotifier assembles the configured sinks. With nothing configured the
// bot still logs every notification locally.
func buildNotifier(config *Config) Notifier {
	var sinks MultiNotifier
	if config.WebhookURL != "" {
		sinks = append(sinks, NewWebhookNotifier(config.WebhookURL))
	}
	if config.RedisAddr != "" {
		sinks = append(sinks, NewRedisNotifier(config.RedisAddr, config.RedisStream))
	}
	if len(sinks) == 0 {
		return logNotifier{}
	}
	sinks = append(sinks, logNotifier{})
	return sinks
}

// MultiNotifier fans one notification out to every sink.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(message, attachmentPath string) {
	for _, n := range m {
		n.Notify(message, attachmentPath)
	}
}

type logNotifier struct{}

func (logNotifier) Notify(message, attachmentPath string) {
	log.Info().Str("attachment", attachmentPath).Msg("NOTIFY: " + message)
}

// WebhookNotifier posts notifications as JSON to an HTTP endpoint
// (Discord/Slack style incoming webhook).
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Notify(message, attachmentPath string) {
	payload := map[string]string{"content": message}
	if attachmentPath != "" {
		payload["attachment"] = attachmentPath
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode notification payload")
		return
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("Webhook notification failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("Webhook notification rejected")
	}
}

// RedisNotifier appends notifications to a Redis stream so external
// watchers (dashboards, phone relays) can consume them.
type RedisNotifier struct {
	client *redis.Client
	stream string
}

func NewRedisNotifier(addr, stream string) *RedisNotifier {
	return &RedisNotifier{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		stream: stream,
	}
}

func (r *RedisNotifier) Notify(message, attachmentPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"message":    message,
			"attachment": attachmentPath,
			"sent_at":    time.Now().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		log.Warn().Err(err).Str("stream", r.stream).Msg("Redis notification failed")
	}
}
