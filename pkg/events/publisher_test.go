package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestEmitFansOutToLocalSubscribers(t *testing.T) {
	p := NewPublisher(nil, "test-source", "")

	ch := p.Subscribe("listener", 4)
	defer p.Unsubscribe("listener")

	err := p.Emit(context.Background(), TranscriptCreated, "tr-42", TranscriptCreatedData{
		TranscriptID: "tr-42",
		Text:         "hello",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	select {
	case env := <-ch:
		if env.Type != TranscriptCreated {
			t.Errorf("Type = %s, want %s", env.Type, TranscriptCreated)
		}
		if env.Source != "test-source" {
			t.Errorf("Source = %q", env.Source)
		}
		if env.SubjectID != "tr-42" {
			t.Errorf("SubjectID = %q", env.SubjectID)
		}
		if env.ID == "" {
			t.Error("envelope must carry a generated ID")
		}
		if env.Timestamp.IsZero() {
			t.Error("envelope must carry a timestamp")
		}

		var data TranscriptCreatedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("unmarshal data: %v", err)
		}
		if data.Text != "hello" {
			t.Errorf("data.Text = %q", data.Text)
		}
	default:
		t.Fatal("subscriber received nothing")
	}
}

func TestEmitDropsWhenSubscriberFull(t *testing.T) {
	p := NewPublisher(nil, "test", "")

	p.Subscribe("slow", 1)
	defer p.Unsubscribe("slow")

	// Second emit finds the buffer full; it must not block or fail.
	for i := 0; i < 3; i++ {
		if err := p.Emit(context.Background(), PasteDelivered, "", PasteDeliveredData{Chars: i}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	p := NewPublisher(nil, "test", "")

	ch := p.Subscribe("gone", 1)
	p.Unsubscribe("gone")

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel must be closed")
	}

	// Emitting after unsubscribe must not panic on the closed channel.
	if err := p.Emit(context.Background(), SystemError, "", map[string]string{"error": "x"}); err != nil {
		t.Fatalf("Emit after unsubscribe: %v", err)
	}
}

func TestEmitRejectsUnmarshalablePayload(t *testing.T) {
	p := NewPublisher(nil, "test", "")
	if err := p.Emit(context.Background(), SystemError, "", func() {}); err == nil {
		t.Error("expected marshal error for a function payload")
	}
}
