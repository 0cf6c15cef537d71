package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

// EventTracker applies a tracking event. *campaign.Service satisfies it.
type EventTracker interface {
	TrackEvent(ctx context.Context, tenantID uuid.UUID, in campaign.TrackInput) (campaign.Tracked, error)
}

const (
	receiveBatch   = 10
	receiveWait    = 20 // seconds, long poll
	receiveBackoff = 5 * time.Second
)

// Consumer drains the tracking queue into the campaign tracker.
type Consumer struct {
	client   SQSClient
	queueURL string
	tracker  EventTracker
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewConsumer(client SQSClient, queueURL string, tracker EventTracker) *Consumer {
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		tracker:  tracker,
		done:     make(chan struct{}),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	logger.Info("tracking consumer started", "queue", c.queueURL)
	c.wg.Add(1)
	go c.poll(ctx)
}

// Stop ends polling and waits for the in-flight batch.
func (c *Consumer) Stop() {
	close(c.done)
	c.wg.Wait()
}

func (c *Consumer) poll(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		if _, err := c.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("tracking queue receive failed", "error", err)
			select {
			case <-time.After(receiveBackoff):
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}
}

// PollOnce receives one batch and applies it. It returns how many messages
// were deleted from the queue.
func (c *Consumer) PollOnce(ctx context.Context) (int, error) {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: receiveBatch,
		WaitTimeSeconds:     receiveWait,
	})
	if err != nil {
		return 0, fmt.Errorf("receive: %w", err)
	}

	deleted := 0
	for _, msg := range out.Messages {
		if !c.handle(ctx, msg) {
			continue
		}
		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			logger.Warn("tracking message delete failed", "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// handle reports whether the message is finished with and can be deleted.
// Messages that can never succeed are dropped; transient failures stay on
// the queue for redelivery.
func (c *Consumer) handle(ctx context.Context, msg types.Message) bool {
	var evt domain.TrackingEvent
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &evt); err != nil {
		logger.Warn("dropping malformed tracking message", "message_id", aws.ToString(msg.MessageId), "error", err)
		return true
	}

	res, err := c.tracker.TrackEvent(ctx, evt.TenantID, campaign.TrackInput{
		CampaignID: evt.CampaignID,
		ContactID:  evt.ContactID,
		EventType:  evt.EventType,
		Metadata:   evt.Metadata(),
		OccurredAt: evt.Timestamp,
	})
	switch {
	case errors.Is(err, campaign.ErrInvalidInput),
		errors.Is(err, campaign.ErrUnknownEventType),
		errors.Is(err, campaign.ErrTenantMismatch):
		logger.Warn("dropping invalid tracking event", "message_id", aws.ToString(msg.MessageId), "error", err)
		return true
	case err != nil:
		logger.Error("tracking event failed, leaving for redelivery",
			"event_type", string(evt.EventType),
			"campaign_id", evt.CampaignID,
			"error", err)
		return false
	}

	logger.Debug("tracking event applied",
		"event_type", string(evt.EventType),
		"campaign_id", evt.CampaignID,
		"duplicate", res.Duplicate)
	return true
}
