package entities_test

import (
	"testing"

	"github.com/microshop/orders-service/internal/entities"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		from entities.OrderStatus
		to   entities.OrderStatus
		want bool
	}{
		{entities.StatusPending, entities.StatusPaid, true},
		{entities.StatusPending, entities.StatusCancelled, true},
		{entities.StatusPending, entities.StatusDelivered, false},
		{entities.StatusPaid, entities.StatusDelivered, true},
		{entities.StatusPaid, entities.StatusCancelled, true},
		{entities.StatusPaid, entities.StatusPending, false},
		{entities.StatusDelivered, entities.StatusPaid, false},
		{entities.StatusDelivered, entities.StatusCancelled, false},
		{entities.StatusCancelled, entities.StatusPending, false},
		{entities.StatusCancelled, entities.StatusPaid, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+" to "+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []entities.OrderStatus{
		entities.StatusPending,
		entities.StatusPaid,
		entities.StatusDelivered,
		entities.StatusCancelled,
	} {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, entities.OrderStatus("SHIPPED").Valid())
	assert.False(t, entities.OrderStatus("").Valid())
}

func TestIndexProducts(t *testing.T) {
	idx := entities.IndexProducts([]entities.Product{
		{ID: "p1", Name: "Keyboard", Price: 10},
		{ID: "p2", Name: "Mouse", Price: 25},
	})

	assert.Len(t, idx, 2)
	assert.Equal(t, "Keyboard", idx["p1"].Name)
	assert.Equal(t, 25.0, idx["p2"].Price)

	_, ok := idx["ghost"]
	assert.False(t, ok)
}
