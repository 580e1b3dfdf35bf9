package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/meeting"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/pkg/jobs"
)

// Job types dispatched after booking lifecycle changes.
const (
	jobIssueMeetingLinks   = "issue_meeting_links"
	jobNotifyBookingChange = "notify_booking_change"
)

type meetingLinkSink interface {
	AttachMeetingLink(ctx context.Context, bookingID, sessionID, url string) error
}

type bookingLoader interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
}

// EventDispatcher turns booking lifecycle events into queued background
// jobs: meeting link issuance for every confirmed session and change
// notifications. Jobs are idempotent per booking so retries are safe.
type EventDispatcher struct {
	queue  *jobs.Queue
	issuer meeting.Issuer
	ledger meetingLinkSink
	loader bookingLoader
	logger *zap.Logger
}

// NewEventDispatcher wires the dispatcher and builds its queue. Start must be
// called before events fire.
func NewEventDispatcher(issuer meeting.Issuer, cfg jobs.QueueConfig, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &EventDispatcher{issuer: issuer, logger: logger}
	d.queue = jobs.NewQueue("booking-events", d.handle, cfg)
	return d
}

// Bind attaches the booking store after construction. The dispatcher and the
// ledger reference each other, so one side has to be wired late.
func (d *EventDispatcher) Bind(ledger meetingLinkSink, loader bookingLoader) {
	d.ledger = ledger
	d.loader = loader
}

// Start launches the queue workers.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the queue workers.
func (d *EventDispatcher) Stop() {
	d.queue.Stop()
}

// Confirmed enqueues meeting link issuance and a confirmation notice.
func (d *EventDispatcher) Confirmed(booking models.Booking) {
	d.enqueue(jobs.Job{ID: booking.ID, Type: jobIssueMeetingLinks, Payload: booking.ID})
	d.enqueue(jobs.Job{ID: booking.ID, Type: jobNotifyBookingChange, Payload: booking.ID})
}

// Cancelled enqueues a cancellation notice.
func (d *EventDispatcher) Cancelled(booking models.Booking) {
	d.enqueue(jobs.Job{ID: booking.ID, Type: jobNotifyBookingChange, Payload: booking.ID})
}

func (d *EventDispatcher) enqueue(job jobs.Job) {
	if err := d.queue.Enqueue(job); err != nil {
		d.logger.Warn("failed to enqueue booking event",
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Error(err),
		)
	}
}

func (d *EventDispatcher) handle(ctx context.Context, job jobs.Job) error {
	bookingID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload for job %s", job.Type)
	}

	switch job.Type {
	case jobIssueMeetingLinks:
		return d.issueMeetingLinks(ctx, bookingID)
	case jobNotifyBookingChange:
		return d.notify(ctx, bookingID)
	default:
		return fmt.Errorf("unknown job type %s", job.Type)
	}
}

func (d *EventDispatcher) issueMeetingLinks(ctx context.Context, bookingID string) error {
	booking, err := d.loader.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	for _, session := range booking.Sessions {
		if session.Status == models.SessionCancelled {
			continue
		}
		url, err := d.issuer.CreateMeeting(ctx, booking.ID, session.ID)
		if err != nil {
			return err
		}
		if err := d.ledger.AttachMeetingLink(ctx, booking.ID, session.ID, url); err != nil {
			return err
		}
	}
	return nil
}

// notify logs the change in place of a real notification provider.
func (d *EventDispatcher) notify(ctx context.Context, bookingID string) error {
	booking, err := d.loader.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	d.logger.Info("booking notification sent",
		zap.String("booking_id", booking.ID),
		zap.String("student_id", booking.StudentID),
		zap.String("status", string(booking.Status)),
	)
	return nil
}
