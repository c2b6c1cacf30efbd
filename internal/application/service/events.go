package service

import (
	"context"

	"github.com/khoahotran/careerfolio/adapters/event"
)

// EventPublisher is implemented by *event.KafkaProducerClient.
type EventPublisher interface {
	PublishMailEvent(ctx context.Context, payload event.MailEventPayload) error
	PublishEnrollmentEvent(ctx context.Context, payload event.EnrollmentEventPayload) error
}

var _ EventPublisher = (*event.KafkaProducerClient)(nil)
