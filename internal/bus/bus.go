package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/microshop/orders-service/internal/config"
	"github.com/microshop/orders-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderCorrelationID = "correlation_id"
	HeaderReplyTopic    = "reply_topic"
	// HeaderError carries a remote failure message instead of a payload.
	HeaderError = "error"
)

var ErrTimeout = errors.New("bus: request timed out")

// Reader is the subset of kafka.Reader the client consumes replies with.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer is the subset of kafka.Writer the client sends requests with.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type reply struct {
	payload []byte
	err     error
}

// Client implements request/reply over kafka topics. Each request carries
// a correlation id and the reply topic in its headers; the calling
// goroutine is parked on a per-request channel until the reply consumer
// delivers a matching message or the bounded wait expires. Requests are
// never retried, a timeout or remote error is terminal.
type Client struct {
	logger     *slog.Logger
	writer     Writer
	reader     Reader
	replyTopic string
	timeout    time.Duration

	mu      sync.Mutex
	pending map[string]chan reply
}

func New(logger *slog.Logger, busCfg config.Bus, kafkaCfg config.Kafka) *Client {
	return &Client{
		logger: logger.With(slog.String("component", "bus")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(kafkaCfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: kafkaCfg.BatchTimeout,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: kafkaCfg.Brokers,
			// Unique group per instance: every instance must see every
			// reply, matching happens against the pending table.
			GroupID: fmt.Sprintf("%s-replies-%s", kafkaCfg.GroupID, uuid.NewString()),
			Topic:   busCfg.ReplyTopic,
			MaxWait: kafkaCfg.ReaderMaxWait,
		}),
		replyTopic: busCfg.ReplyTopic,
		timeout:    busCfg.RequestTimeout,
		pending:    make(map[string]chan reply),
	}
}

// NewWithTransport wires the client onto caller-provided reader/writer,
// used by tests.
func NewWithTransport(logger *slog.Logger, reader Reader, writer Writer, replyTopic string, timeout time.Duration) *Client {
	return &Client{
		logger:     logger.With(slog.String("component", "bus")),
		writer:     writer,
		reader:     reader,
		replyTopic: replyTopic,
		timeout:    timeout,
		pending:    make(map[string]chan reply),
	}
}

// Request sends payload to topic and waits for the correlated reply. The
// wait is bounded by the configured timeout and by ctx.
func (c *Client) Request(ctx context.Context, topic string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("bus: failed to marshal request: %w", err)
	}

	correlationID := uuid.NewString()
	ch := c.register(correlationID)
	defer c.drop(correlationID)

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(correlationID),
		Value: body,
		Headers: []kafka.Header{
			{Key: HeaderCorrelationID, Value: []byte(correlationID)},
			{Key: HeaderReplyTopic, Value: []byte(c.replyTopic)},
		},
	}
	if err := c.writer.WriteMessages(ctx, msg); err != nil {
		return nil, fmt.Errorf("bus: failed to send request to %s: %w", topic, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return r.payload, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Consume runs the reply loop until ctx is cancelled. Fetch errors are
// retried with backoff before the message is given up on.
func (c *Client) Consume(ctx context.Context) {
	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  5,
		Multiplier:   2,
	}

	for {
		var m kafka.Message
		err := utils.Retry(cfg, func() error {
			var ferr error
			m, ferr = c.reader.FetchMessage(ctx)
			return ferr
		}, io.EOF, context.Canceled)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("failed to fetch reply", slog.Any("error", err))
			continue
		}

		c.deliver(m)

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit reply", slog.Any("error", err))
		}
	}
}

func (c *Client) deliver(m kafka.Message) {
	var correlationID, remoteErr string
	for _, h := range m.Headers {
		switch h.Key {
		case HeaderCorrelationID:
			correlationID = string(h.Value)
		case HeaderError:
			remoteErr = string(h.Value)
		}
	}

	if correlationID == "" {
		c.logger.Warn("reply without correlation id dropped")
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[correlationID]
	delete(c.pending, correlationID)
	c.mu.Unlock()

	if !ok {
		// Reply for another instance or for a request that already
		// timed out.
		c.logger.Debug("unmatched reply dropped", slog.String("correlation_id", correlationID))
		return
	}

	r := reply{payload: m.Value}
	if remoteErr != "" {
		r = reply{err: fmt.Errorf("bus: remote error: %s", remoteErr)}
	}
	ch <- r
}

func (c *Client) register(correlationID string) chan reply {
	ch := make(chan reply, 1)
	c.mu.Lock()
	c.pending[correlationID] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) drop(correlationID string) {
	c.mu.Lock()
	delete(c.pending, correlationID)
	c.mu.Unlock()
}

func (c *Client) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}
	return c.writer.Close()
}
