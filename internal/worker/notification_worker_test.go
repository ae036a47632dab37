package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/deskline/support-portal/internal/events"
)

type captureSink struct {
	got  []events.EventType
	fail bool
}

func (s *captureSink) Write(_ context.Context, e events.Event) error {
	s.got = append(s.got, e.Type)
	if s.fail {
		return errors.New("broker unreachable")
	}
	return nil
}

func TestStartNotificationWorkerForwardsEvents(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	sink := &captureSink{}
	StartNotificationWorker(Dependencies{Dispatcher: d, Stream: sink})

	for _, typ := range []events.EventType{events.EventTicketCreated, events.EventCommentAdded} {
		if err := d.Publish(t.Context(), events.Event{Type: typ, TicketID: "t-1"}); err != nil {
			t.Fatalf("Publish(%s): %v", typ, err)
		}
	}
	if len(sink.got) != 2 || sink.got[1] != events.EventCommentAdded {
		t.Errorf("forwarded = %v", sink.got)
	}
}

func TestStreamFailureSurfacesToPublisher(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	StartNotificationWorker(Dependencies{Dispatcher: d, Stream: &captureSink{fail: true}})
	if err := d.Publish(t.Context(), events.Event{Type: events.EventTicketDeleted}); err == nil {
		t.Error("stream failure swallowed")
	}
}

func TestStartNotificationWorkerWithoutStream(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	StartNotificationWorker(Dependencies{Dispatcher: d})
	if err := d.Publish(t.Context(), events.Event{Type: events.EventTicketCreated}); err != nil {
		t.Errorf("Publish without subscribers = %v", err)
	}
}
