package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/events"
)

func TestBus_PublishMatchingType(t *testing.T) {
	bus := events.NewBus()

	var got []events.Type
	bus.Subscribe(events.TypeMessage, func(_ context.Context, e events.Event) {
		got = append(got, e.Type)
	})

	bus.Publish(context.Background(), events.NewMessageEvent(protocol.NewMessage(protocol.Inbound, "hi", "")))
	bus.Publish(context.Background(), events.NewErrorEvent("boom", errors.New("boom")))

	if diff := cmp.Diff([]events.Type{events.TypeMessage}, got); diff != "" {
		t.Errorf("delivered types mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_SubscriptionOrder(t *testing.T) {
	bus := events.NewBus()

	var order []string
	bus.Subscribe(events.TypeError, func(context.Context, events.Event) { order = append(order, "first") })
	bus.SubscribeAll(func(context.Context, events.Event) { order = append(order, "all") })
	bus.Subscribe(events.TypeError, func(context.Context, events.Event) { order = append(order, "second") })

	bus.Publish(context.Background(), events.NewErrorEvent("x", nil))

	if diff := cmp.Diff([]string{"first", "all", "second"}, order); diff != "" {
		t.Errorf("delivery order mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()

	count := 0
	unsubscribe := bus.SubscribeAll(func(context.Context, events.Event) { count++ })

	bus.Publish(context.Background(), events.NewErrorEvent("x", nil))
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), events.NewErrorEvent("x", nil))

	if count != 1 {
		t.Errorf("got %d deliveries, want 1", count)
	}
	if bus.Len() != 0 {
		t.Errorf("got %d subscriptions, want 0", bus.Len())
	}
}

func TestBus_UnsubscribeDuringDelivery(t *testing.T) {
	bus := events.NewBus()

	calls := 0
	var unsubscribe func()
	unsubscribe = bus.SubscribeAll(func(context.Context, events.Event) {
		calls++
		unsubscribe()
	})
	later := 0
	bus.SubscribeAll(func(context.Context, events.Event) { later++ })

	bus.Publish(context.Background(), events.NewErrorEvent("x", nil))
	bus.Publish(context.Background(), events.NewErrorEvent("x", nil))

	if calls != 1 {
		t.Errorf("self-removing handler called %d times, want 1", calls)
	}
	if later != 2 {
		t.Errorf("remaining handler called %d times, want 2", later)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := events.NewBus()
	called := false
	bus.SubscribeAll(func(context.Context, events.Event) { called = true })

	bus.Clear()
	bus.Publish(context.Background(), events.NewErrorEvent("x", nil))

	if called {
		t.Error("handler called after Clear")
	}
}

func TestBus_TypedHelpers(t *testing.T) {
	bus := events.NewBus()

	msg := protocol.NewMessage(protocol.Outbound, "reply", protocol.LaneImplementation)
	req := protocol.ApprovalRequest{ID: "icerc-1", Command: "ls", Risk: protocol.RiskLow}
	decision := protocol.ApprovalDecision{RequestID: "icerc-1", Approved: true, Reason: "ok"}
	failure := errors.New("backend down")

	var (
		gotMsg      protocol.Message
		gotReq      protocol.ApprovalRequest
		gotDecision protocol.ApprovalDecision
		gotErr      events.ErrorInfo
	)
	bus.OnMessage(func(_ context.Context, m protocol.Message) { gotMsg = m })
	bus.OnApprovalRequest(func(_ context.Context, r protocol.ApprovalRequest) { gotReq = r })
	bus.OnApprovalDecision(func(_ context.Context, d protocol.ApprovalDecision) { gotDecision = d })
	bus.OnError(func(_ context.Context, info events.ErrorInfo) { gotErr = info })

	ctx := context.Background()
	bus.Publish(ctx, events.NewMessageEvent(msg))
	bus.Publish(ctx, events.NewApprovalRequestEvent(req))
	bus.Publish(ctx, events.NewApprovalDecisionEvent(decision))
	bus.Publish(ctx, events.NewErrorEvent("completion failed", failure))

	if diff := cmp.Diff(msg, gotMsg); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(req, gotReq); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(decision, gotDecision); diff != "" {
		t.Errorf("decision mismatch (-want +got):\n%s", diff)
	}
	if gotErr.Description != "completion failed" || !errors.Is(gotErr.Err, failure) {
		t.Errorf("got error info %+v", gotErr)
	}
}

func TestNewExtensionEvent(t *testing.T) {
	e := events.NewExtensionEvent(events.TypeExtensionInstalled, "metrics", "1.0.0")

	if e.Type != events.TypeExtensionInstalled {
		t.Errorf("got type %q", e.Type)
	}
	want := events.ExtensionInfo{Name: "metrics", Version: "1.0.0"}
	if diff := cmp.Diff(want, e.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp is zero")
	}
}
