package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/asetdesk/asetdesk/internal/history"
	jobmetrics "github.com/asetdesk/asetdesk/internal/jobs"
	"github.com/asetdesk/asetdesk/internal/notification"
	"github.com/asetdesk/asetdesk/internal/record"
)

// NotificationSource adalah irisan repository notifikasi yang dipakai sweep.
type NotificationSource interface {
	List(ctx context.Context) ([]notification.Notification, error)
	Delete(ctx context.Context, id int64) error
}

// StatusSource membaca status persetujuan otoritatif.
type StatusSource interface {
	ApprovalStatus(ctx context.Context, table history.TableRef, id record.FlexID) (string, error)
}

// HiddenSweeper memangkas himpunan sembunyi seluruh principal.
type HiddenSweeper interface {
	Scopes(ctx context.Context) ([]string, error)
	Prune(ctx context.Context, scope string, live map[int64]struct{}) (map[int64]struct{}, error)
}

// NotificationSweepJob membersihkan state notifikasi di luar jalur request:
// id sembunyi yang basi dan notifikasi approval yang sudah diputuskan.
type NotificationSweepJob struct {
	source  NotificationSource
	status  StatusSource
	hidden  HiddenSweeper
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewNotificationSweepJob constructs NotificationSweepJob.
func NewNotificationSweepJob(source NotificationSource, status StatusSource, hidden HiddenSweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotificationSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationSweepJob{source: source, status: status, hidden: hidden, logger: logger, metrics: metrics}
}

// HandlePrune processes TaskNotificationPrune tasks.
func (j *NotificationSweepJob) HandlePrune(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track(TaskNotificationPrune)

	items, err := j.source.List(ctx)
	if err != nil {
		tracker.Done(err)
		return err
	}
	live := make(map[int64]struct{}, len(items))
	for _, n := range items {
		live[n.ID] = struct{}{}
	}

	scopes, err := j.hidden.Scopes(ctx)
	if err != nil {
		tracker.Done(err)
		return err
	}
	for _, scope := range scopes {
		if _, err := j.hidden.Prune(ctx, scope, live); err != nil {
			j.logger.Warn("prune hidden set", slog.String("scope", scope), slog.Any("error", err))
		}
	}
	tracker.Done(nil)
	return nil
}

// HandleRevalidate processes TaskNotificationRevalidate tasks.
func (j *NotificationSweepJob) HandleRevalidate(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track(TaskNotificationRevalidate)

	items, err := j.source.List(ctx)
	if err != nil {
		tracker.Done(err)
		return err
	}
	removed := 0
	for _, n := range items {
		if n.Kind != notification.KindApproval || !n.HasReference() {
			continue
		}
		status, err := j.status.ApprovalStatus(ctx, n.TableRef, n.RecordID)
		if err != nil {
			// Status tidak diketahui; biarkan untuk sweep berikutnya.
			continue
		}
		if status == history.StatusDiajukan {
			continue
		}
		if err := j.source.Delete(ctx, n.ID); err != nil {
			j.logger.Warn("revalidate delete", slog.Int64("id", n.ID), slog.Any("error", err))
			continue
		}
		removed++
	}
	j.metrics.Swept(TaskNotificationRevalidate, removed)
	tracker.Done(nil)
	return nil
}
