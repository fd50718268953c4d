package pubsub

import (
	"encoding/json"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := NewBroker()
	ch1, unsub1 := b.Subscribe("contest-1")
	ch2, unsub2 := b.Subscribe("contest-1")
	defer unsub1()
	defer unsub2()

	b.Publish("contest-1", Event{Kind: KindLeaderboardUpdate, ContestID: "contest-1"})

	for _, ch := range []<-chan []byte{ch1, ch2} {
		ev := recv(t, ch)
		if ev.Kind != KindLeaderboardUpdate || ev.ContestID != "contest-1" {
			t.Errorf("unexpected event: %+v", ev)
		}
	}
}

func TestPublishIsScopedToTopic(t *testing.T) {
	b := NewBroker()
	ch1, unsub1 := b.Subscribe("contest-1")
	ch2, unsub2 := b.Subscribe("contest-2")
	defer unsub1()
	defer unsub2()

	b.Publish("contest-1", Event{Kind: KindLeaderboardUpdate, ContestID: "contest-1"})

	recv(t, ch1)
	select {
	case msg := <-ch2:
		t.Errorf("subscriber of another contest received %s", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("contest-1")
	unsub()

	if _, open := <-ch; open {
		t.Error("expected channel closed after unsubscribe")
	}
	if n := b.SubscriberCount("contest-1"); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}

	// Publishing to a topic with no subscribers must not panic.
	b.Publish("contest-1", Event{Kind: KindLeaderboardUpdate, ContestID: "contest-1"})
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := NewBroker()
	_, unsub := b.Subscribe("contest-1")
	defer unsub()

	// Overflow the subscriber buffer; every Publish must return immediately.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			b.Publish("contest-1", Event{Kind: KindLeaderboardUpdate, ContestID: "contest-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestCloseTopicClosesAllSubscribers(t *testing.T) {
	b := NewBroker()
	ch1, _ := b.Subscribe("contest-1")
	ch2, _ := b.Subscribe("contest-1")

	b.CloseTopic("contest-1")

	for _, ch := range []<-chan []byte{ch1, ch2} {
		if _, open := <-ch; open {
			t.Error("expected channel closed after CloseTopic")
		}
	}
	if n := b.SubscriberCount("contest-1"); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
}
