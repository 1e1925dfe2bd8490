package eventbus

import "testing"

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(Event{Type: EventScanStarted, Message: "go"})

	select {
	case evt := <-ch:
		if evt.Type != EventScanStarted {
			t.Fatalf("unexpected event type: %s", evt.Type)
		}
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	cancel()

	b.Publish(Event{Type: EventScanCompleted})

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := New()
	_, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBufferSize+10; i++ {
		b.Publish(Event{Type: EventPortFound})
	}
}
