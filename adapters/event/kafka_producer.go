package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/config"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

const (
	TopicMailEvents       = "mail.events"
	TopicEnrollmentEvents = "enrollment.events"
)

type MailEventKind string

const (
	MailKindVerificationCode MailEventKind = "verification_code"
)

type MailEventPayload struct {
	EventID    uuid.UUID     `json:"event_id"`
	Kind       MailEventKind `json:"kind"`
	To         string        `json:"to"`
	Code       string        `json:"code,omitempty"`
	TTLMinutes int           `json:"ttl_minutes,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type EnrollmentEventKind string

const (
	EnrollmentKindEnrolled EnrollmentEventKind = "enrolled"
)

type EnrollmentEventPayload struct {
	EventID      uuid.UUID           `json:"event_id"`
	Kind         EnrollmentEventKind `json:"kind"`
	UserID       int64               `json:"user_id"`
	CourseID     int64               `json:"course_id"`
	EnrollmentID int64               `json:"enrollment_id"`
	PaymentID    *int64              `json:"payment_id,omitempty"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

type KafkaProducerClient struct {
	MailEventsWriter       *kafka.Writer
	EnrollmentEventsWriter *kafka.Writer
	logger                 logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	mailWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicMailEvents,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	enrollmentWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicEnrollmentEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		MailEventsWriter:       mailWriter,
		EnrollmentEventsWriter: enrollmentWriter,
		logger:                 log,
	}, nil
}

func (c *KafkaProducerClient) PublishMailEvent(ctx context.Context, payload MailEventPayload) error {
	if payload.EventID == uuid.Nil {
		payload.EventID = uuid.New()
	}
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail event: %w", err)
	}
	return c.MailEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.To),
		Value: value,
	})
}

// PublishEnrollmentEvent keys messages by user so one learner's events stay ordered.
func (c *KafkaProducerClient) PublishEnrollmentEvent(ctx context.Context, payload EnrollmentEventPayload) error {
	if payload.EventID == uuid.Nil {
		payload.EventID = uuid.New()
	}
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal enrollment event: %w", err)
	}
	return c.EnrollmentEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(payload.UserID, 10)),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.MailEventsWriter != nil {
		if err := c.MailEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close mail events writer", zap.Error(err))
		}
	}
	if c.EnrollmentEventsWriter != nil {
		if err := c.EnrollmentEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close enrollment events writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
