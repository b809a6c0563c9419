package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

func TestHubRoutesByChannel(t *testing.T) {
	hub := NewHub()

	customer := hub.Subscribe(domain.UserChannel("cust-1"))
	defer customer.Close()
	driver := hub.Subscribe(domain.UserChannel("drv-1"), domain.RoleChannel(domain.DriverRole))
	defer driver.Close()

	hub.Publish(
		domain.Event{Channel: domain.UserChannel("cust-1"), Name: domain.EventOrderUpdated},
		domain.Event{Channel: domain.RoleChannel(domain.DriverRole), Name: domain.EventOrderAvailable},
	)

	select {
	case event := <-customer.Events:
		assert.Equal(t, domain.EventOrderUpdated, event.Name)
	default:
		t.Fatal("customer got no event")
	}

	select {
	case event := <-driver.Events:
		assert.Equal(t, domain.EventOrderAvailable, event.Name)
	default:
		t.Fatal("driver got no event")
	}

	// Nothing else should have arrived.
	assert.Empty(t, customer.Events)
	assert.Empty(t, driver.Events)
}

func TestHubBroadcastReachesAllRoleSubscribers(t *testing.T) {
	hub := NewHub()

	first := hub.Subscribe(domain.RoleChannel(domain.DriverRole))
	defer first.Close()
	second := hub.Subscribe(domain.RoleChannel(domain.DriverRole))
	defer second.Close()

	hub.Publish(domain.Event{Channel: domain.RoleChannel(domain.DriverRole), Name: domain.EventOrderAvailable})

	require.Len(t, first.Events, 1)
	require.Len(t, second.Events, 1)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("user:slow")
	defer sub.Close()

	// Publishing must never block, even past the buffer.
	for i := 0; i < subscriberBuffer*2; i++ {
		hub.Publish(domain.Event{Channel: "user:slow", Name: domain.EventOrderUpdated})
	}
	assert.Len(t, sub.Events, subscriberBuffer)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("user:gone")
	assert.Equal(t, 1, hub.Subscribers("user:gone"))

	sub.Close()
	assert.Equal(t, 0, hub.Subscribers("user:gone"))

	// Publishing to an empty channel is a no-op.
	hub.Publish(domain.Event{Channel: "user:gone", Name: domain.EventOrderUpdated})
	assert.Empty(t, sub.Events)
}
