package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"prepwise/internal/model"
)

const (
	QueueGradingRequests  = "grading.requests"
	QueueSessionCompleted = "session.completed"
)

// Publisher is the queue surface services see; nil-safe helpers make
// the broker strictly optional in local setups.
type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	Close() error
}

type rabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitPublisher(url string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &rabbitPublisher{conn: conn, channel: channel}, nil
}

func (p *rabbitPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *rabbitPublisher) declareQueue(name string) (amqp.Queue, error) {
	return p.channel.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (p *rabbitPublisher) Publish(ctx context.Context, queueName string, body []byte) error {
	if _, err := p.declareQueue(queueName); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	return p.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
}

// GradingRequestEvent asks the external grading pipeline to assess one
// essay response. The pipeline writes an AssessmentRecord when done.
type GradingRequestEvent struct {
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	MaxPoints  int    `json:"max_points"`
}

// SessionCompletedEvent notifies downstream consumers that a section
// session finished.
type SessionCompletedEvent struct {
	UserID      string         `json:"user_id"`
	SessionID   string         `json:"session_id"`
	ProductType string         `json:"product_type"`
	TestMode    model.TestMode `json:"test_mode"`
	SectionName string         `json:"section_name"`
	FinalScore  int            `json:"final_score"`
}

// PublishGradingRequest is fire-and-forget: a lost grading request is
// recovered by the scheduler sweep, so failures are logged, not
// propagated into the response path.
func PublishGradingRequest(ctx context.Context, p Publisher, event *GradingRequestEvent) {
	publish(ctx, p, QueueGradingRequests, event)
}

func PublishSessionCompleted(ctx context.Context, p Publisher, event *SessionCompletedEvent) {
	publish(ctx, p, QueueSessionCompleted, event)
}

func publish(ctx context.Context, p Publisher, queue string, event interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", queue, err)
		return
	}
	if err := p.Publish(ctx, queue, body); err != nil {
		log.Printf("Failed to publish %s event: %v", queue, err)
	}
}
