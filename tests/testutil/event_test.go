package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Test", uuid.New())
	return &e
}

func TestMockEventHandler(t *testing.T) {
	handler := NewMockEventHandler("A", "B")
	assert.Equal(t, []string{"A", "B"}, handler.EventTypes())

	require.NoError(t, handler.Handle(context.Background(), testEvent("A")))
	handler.SetError(errors.New("boom"))
	assert.EqualError(t, handler.Handle(context.Background(), testEvent("B")), "boom")

	assert.Equal(t, []string{"A", "B"}, handler.Types())
	assert.Len(t, handler.Handled(), 2)
}

func TestRecordingPublisher_KeepsOrder(t *testing.T) {
	p := &RecordingPublisher{}
	require.NoError(t, p.Publish(context.Background(), testEvent("X"), testEvent("Y"), testEvent("Z")))
	assert.Equal(t, []string{"X", "Y", "Z"}, p.Types())
}
