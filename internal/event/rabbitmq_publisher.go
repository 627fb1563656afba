package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loan-engine/internal/domain/audit"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publisherAppID = "loan-engine"

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type channelOpener interface {
	Channel() (amqpChannel, error)
}

type amqpConn struct {
	conn *amqp.Connection
}

func (c amqpConn) Channel() (amqpChannel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

type RabbitMQEventPublisher struct {
	conn         channelOpener
	exchangeName string
	logger       *slog.Logger
	now          func() time.Time
}

var _ audit.Writer = (*RabbitMQEventPublisher)(nil)

// AuditEvent is the message body published for every audit entry.
type AuditEvent struct {
	EntityType    string    `json:"entityType"`
	EntityID      int64     `json:"entityId"`
	Action        string    `json:"action"`
	Payload       any       `json:"payload,omitempty"`
	ActorID       int64     `json:"actorId,omitempty"`
	ActorType     string    `json:"actorType,omitempty"`
	Source        string    `json:"source"`
	CorrelationID string    `json:"correlationId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	return newPublisher(amqpConn{conn: conn}, exchangeName, logger)
}

func newPublisher(conn channelOpener, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
		now:          time.Now,
	}, nil
}

// RoutingKey builds "audit.<entity>.<action>", e.g. audit.loan.disburse.
func RoutingKey(entry audit.Entry) string {
	return "audit." + strings.ToLower(entry.EntityType) + "." + strings.ToLower(string(entry.Action))
}

func (p *RabbitMQEventPublisher) Write(ctx context.Context, entry audit.Entry) error {
	return p.publish(ctx, RoutingKey(entry), AuditEvent{
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		Action:        string(entry.Action),
		Payload:       entry.Payload,
		ActorID:       entry.ActorID,
		ActorType:     entry.ActorType,
		Source:        entry.Source,
		CorrelationID: entry.CorrelationID,
		OccurredAt:    entry.OccurredAt,
	})
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)

	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}
