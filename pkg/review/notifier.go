package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers review events to interested parties. All calls are
// best-effort and fire-and-forget: the engine invokes them outside its
// transactional boundary and ignores failures beyond logging.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, material *MaterialRecord, oldStatus, newStatus MaterialStatus, actor string)
	NotifyApprovalRequested(ctx context.Context, material *MaterialRecord, reviewer string)
}

// SlogNotifier logs notifications instead of delivering them. It is the
// default when no webhook is configured.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a notifier writing to the given logger.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) NotifyStatusChange(_ context.Context, material *MaterialRecord, oldStatus, newStatus MaterialStatus, actor string) {
	n.logger.Info("material status changed",
		"materialID", material.ID,
		"platform", material.Platform,
		"assetSlot", material.AssetSlot,
		"oldStatus", oldStatus,
		"newStatus", newStatus,
		"actor", actor)
}

func (n *SlogNotifier) NotifyApprovalRequested(_ context.Context, material *MaterialRecord, reviewer string) {
	n.logger.Info("approval requested",
		"materialID", material.ID,
		"platform", material.Platform,
		"assetSlot", material.AssetSlot,
		"reviewer", reviewer)
}

// WebhookNotifier POSTs notification events as JSON to a configured URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookNotifier creates a notifier delivering to url.
func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (n *WebhookNotifier) NotifyStatusChange(ctx context.Context, material *MaterialRecord, oldStatus, newStatus MaterialStatus, actor string) {
	n.post(ctx, map[string]any{
		"event":      "material.status_changed",
		"materialId": material.ID,
		"platform":   material.Platform,
		"assetSlot":  material.AssetSlot,
		"oldStatus":  oldStatus,
		"newStatus":  newStatus,
		"actor":      actor,
	})
}

func (n *WebhookNotifier) NotifyApprovalRequested(ctx context.Context, material *MaterialRecord, reviewer string) {
	n.post(ctx, map[string]any{
		"event":      "material.approval_requested",
		"materialId": material.ID,
		"platform":   material.Platform,
		"assetSlot":  material.AssetSlot,
		"reviewer":   reviewer,
	})
}

func (n *WebhookNotifier) post(ctx context.Context, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to encode notification", "error", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to build notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("failed to deliver notification", "error", err, "url", n.url)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Error("notification rejected",
			"error", fmt.Sprintf("status %d", resp.StatusCode), "url", n.url)
	}
}

// SyncEnqueuer hands accepted uploads to the remote storage pipeline.
// Enqueue failures are non-fatal: the material keeps storage_pending=true
// and is retried out of band.
type SyncEnqueuer interface {
	Enqueue(ctx context.Context, materialID, fileName string, content []byte) error
}
