package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()

	emp, cancelEmp := hub.Subscribe("emp-1")
	defer cancelEmp()
	admins, cancelAdmins := hub.Subscribe(TopicAdmins)
	defer cancelAdmins()
	other, cancelOther := hub.Subscribe("emp-2")
	defer cancelOther()

	hub.Publish(Event{Name: "notification", Data: "validated"}, "emp-1", TopicAdmins)

	got := <-emp
	assert.Equal(t, "emp-1", got.Topic)
	assert.Equal(t, "validated", got.Data)

	got = <-admins
	assert.Equal(t, TopicAdmins, got.Topic)

	select {
	case e := <-other:
		t.Fatalf("unexpected event %+v", e)
	default:
	}
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("emp-1")
	require.Equal(t, 1, hub.SubscriberCount("emp-1"))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("emp-1"))
}

func TestPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("emp-1")
	defer cancel()

	for i := 0; i < 100; i++ {
		hub.Publish(Event{Name: "notification"}, "emp-1")
	}
}

func TestClose(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("emp-1")

	hub.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := hub.Subscribe("emp-1")
	_, open = <-late
	assert.False(t, open)
}
