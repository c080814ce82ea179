package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/microshop/orders-service/internal/catalog"
	"github.com/microshop/orders-service/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	gotTopic   string
	gotPayload any
	response   []byte
	err        error
}

func (f *fakeRequester) Request(ctx context.Context, topic string, payload any) ([]byte, error) {
	f.gotTopic = topic
	f.gotPayload = payload
	return f.response, f.err
}

func newClient(requester *fakeRequester) *catalog.Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return catalog.New(logger, requester, "products.validate")
}

func TestClient_ValidateProducts(t *testing.T) {
	requester := &fakeRequester{
		response: []byte(`[{"id":"p1","name":"Keyboard","price":10},{"id":"p2","name":"Mouse","price":25}]`),
	}
	client := newClient(requester)

	products, err := client.ValidateProducts(context.Background(), []string{"p1", "p2"})

	require.NoError(t, err)
	assert.Equal(t, "products.validate", requester.gotTopic)
	assert.Equal(t, []string{"p1", "p2"}, requester.gotPayload)
	assert.Equal(t, []entities.Product{
		{ID: "p1", Name: "Keyboard", Price: 10},
		{ID: "p2", Name: "Mouse", Price: 25},
	}, products)
}

func TestClient_ValidateProducts_EmptyIDs(t *testing.T) {
	client := newClient(&fakeRequester{})

	_, err := client.ValidateProducts(context.Background(), nil)

	assert.Error(t, err)
}

func TestClient_ValidateProducts_RemoteFailure(t *testing.T) {
	requester := &fakeRequester{err: errors.New("products not found")}
	client := newClient(requester)

	_, err := client.ValidateProducts(context.Background(), []string{"ghost"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "products not found")
}

func TestClient_ValidateProducts_MalformedResponse(t *testing.T) {
	requester := &fakeRequester{response: []byte(`{not json`)}
	client := newClient(requester)

	_, err := client.ValidateProducts(context.Background(), []string{"p1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}
