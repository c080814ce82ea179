package bus_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/microshop/orders-service/internal/bus"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory stand-in for the kafka reader and writer.
// Written requests land on sent, replies pushed to replies reach the
// consumer loop.
type fakeTransport struct {
	sent    chan kafka.Message
	replies chan kafka.Message
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent:    make(chan kafka.Message, 16),
		replies: make(chan kafka.Message, 16),
	}
}

func (f *fakeTransport) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.sent <- m
	}
	return nil
}

func (f *fakeTransport) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.replies:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeTransport) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func correlationID(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == bus.HeaderCorrelationID {
			return string(h.Value)
		}
	}
	return ""
}

func newTestClient(t *testing.T, timeout time.Duration) (*bus.Client, *fakeTransport) {
	t.Helper()

	transport := newFakeTransport()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := bus.NewWithTransport(logger, transport, transport, "orders.replies", timeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Consume(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return client, transport
}

func TestClient_Request(t *testing.T) {
	client, transport := newTestClient(t, time.Second)

	go func() {
		req := <-transport.sent
		transport.replies <- kafka.Message{
			Headers: []kafka.Header{
				{Key: bus.HeaderCorrelationID, Value: []byte(correlationID(req))},
			},
			Value: []byte(`[{"id":"p1","name":"Keyboard","price":10}]`),
		}
	}()

	payload, err := client.Request(context.Background(), "products.validate", []string{"p1"})

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","name":"Keyboard","price":10}]`, string(payload))
}

func TestClient_Request_SetsHeaders(t *testing.T) {
	client, transport := newTestClient(t, 50*time.Millisecond)

	go func() {
		_, _ = client.Request(context.Background(), "products.validate", []string{"p1"})
	}()

	req := <-transport.sent
	assert.Equal(t, "products.validate", req.Topic)
	assert.NotEmpty(t, correlationID(req))

	var replyTopic string
	for _, h := range req.Headers {
		if h.Key == bus.HeaderReplyTopic {
			replyTopic = string(h.Value)
		}
	}
	assert.Equal(t, "orders.replies", replyTopic)
}

func TestClient_Request_Timeout(t *testing.T) {
	client, _ := newTestClient(t, 50*time.Millisecond)

	_, err := client.Request(context.Background(), "products.validate", []string{"p1"})

	assert.ErrorIs(t, err, bus.ErrTimeout)
}

func TestClient_Request_RemoteError(t *testing.T) {
	client, transport := newTestClient(t, time.Second)

	go func() {
		req := <-transport.sent
		transport.replies <- kafka.Message{
			Headers: []kafka.Header{
				{Key: bus.HeaderCorrelationID, Value: []byte(correlationID(req))},
				{Key: bus.HeaderError, Value: []byte("products not found")},
			},
		}
	}()

	_, err := client.Request(context.Background(), "products.validate", []string{"ghost"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "products not found")
}

func TestClient_Request_IgnoresUnmatchedReplies(t *testing.T) {
	client, transport := newTestClient(t, time.Second)

	go func() {
		req := <-transport.sent
		// Replies for other instances and without correlation must not
		// disturb the pending request.
		transport.replies <- kafka.Message{Value: []byte("no headers")}
		transport.replies <- kafka.Message{
			Headers: []kafka.Header{
				{Key: bus.HeaderCorrelationID, Value: []byte("someone-else")},
			},
		}
		transport.replies <- kafka.Message{
			Headers: []kafka.Header{
				{Key: bus.HeaderCorrelationID, Value: []byte(correlationID(req))},
			},
			Value: []byte(`"ok"`),
		}
	}()

	payload, err := client.Request(context.Background(), "products.validate", []string{"p1"})

	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(payload))
}

func TestClient_Request_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Request(ctx, "products.validate", []string{"p1"})

	assert.ErrorIs(t, err, context.Canceled)
}
