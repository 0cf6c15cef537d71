package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/logger"
)

// SQSClient is the subset of *sqs.Client used by the publisher and consumer.
type SQSClient interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// EventPublisher hands tracking events to the queue.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.TrackingEvent)
}

const publishTimeout = 5 * time.Second

// Publisher sends tracking events to SQS.
type Publisher struct {
	client   SQSClient
	queueURL string
}

func NewPublisher(client SQSClient, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

// Send enqueues one event and waits for SQS to accept it.
func (p *Publisher) Send(ctx context.Context, evt domain.TrackingEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal tracking event: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send to sqs: %w", err)
	}
	return nil
}

// Publish enqueues in the background so the recipient's request is never
// held up by the queue. Failures are logged.
func (p *Publisher) Publish(_ context.Context, evt domain.TrackingEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.Send(ctx, evt); err != nil {
			logger.Error("publish tracking event failed",
				"event_type", string(evt.EventType),
				"campaign_id", evt.CampaignID,
				"error", err)
		}
	}()
}
