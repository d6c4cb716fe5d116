package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("handler exploded")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("QuantityChanged")
	bus.Subscribe(handler, "QuantityChanged")

	event := newTestEvent("QuantityChanged")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("QuantityChanged")
	bus.Subscribe(handler, "QuantityChanged")

	err := bus.Publish(context.Background(), newTestEvent("QuantityChanged"), newTestEvent("QuantityChanged"))

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler1 := newTestHandler("ReturnProcessed")
	handler2 := newTestHandler("ReturnProcessed")
	bus.Subscribe(handler1, "ReturnProcessed")
	bus.Subscribe(handler2, "ReturnProcessed")

	err := bus.Publish(context.Background(), newTestEvent("ReturnProcessed"))

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	err := bus.Publish(context.Background(), newTestEvent("AnyEventType"))

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_UnmatchedType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("QuantityChanged")
	bus.Subscribe(handler, "QuantityChanged")

	err := bus.Publish(context.Background(), newTestEvent("SaleCreated"))

	require.NoError(t, err)
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("SaleCreated")
	failing.err = errors.New("handler error")
	healthy := newTestHandler("SaleCreated")
	bus.Subscribe(failing, "SaleCreated")
	bus.Subscribe(healthy, "SaleCreated")

	// One failing handler does not stop delivery to the others
	err := bus.Publish(context.Background(), newTestEvent("SaleCreated"))

	require.NoError(t, err)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := newTestHandler("SaleCreated")
	panicking.panics = true
	healthy := newTestHandler("SaleCreated")
	bus.Subscribe(panicking, "SaleCreated")
	bus.Subscribe(healthy, "SaleCreated")

	err := bus.Publish(context.Background(), newTestEvent("SaleCreated"))

	require.NoError(t, err)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("SaleCreated")
	bus.Subscribe(handler, "SaleCreated")
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("SaleCreated"))

	require.NoError(t, err)
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_SubscribeUsesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("StockReserved", "StockReleased")
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("StockReleased"))

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
