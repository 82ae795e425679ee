package stream_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/backoff"
	"github.com/Siddhant-K-code/agentflow-go/stream"
	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statusFrame(id string, phase workflow.Phase) []byte {
	return fmt.Appendf(nil,
		`{"type":"status_changed","workflow_id":%q,"ts":"2026-01-15T10:30:00Z","status":{"workflow_id":%q,"phase":%q}}`,
		id, id, phase)
}

// liveServer is a WebSocket endpoint whose per-connection behavior is
// scripted by the test.
func liveServer(t *testing.T, handle func(conn net.Conn, attempt int)) *httptest.Server {
	t.Helper()
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(conn, int(attempts.Add(1)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stateRecorder collects state transitions in order.
type stateRecorder struct {
	mu     sync.Mutex
	states []stream.State
}

func (r *stateRecorder) record(s stream.State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *stateRecorder) snapshot() []stream.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stream.State(nil), r.states...)
}

func collect(t *testing.T, sub *stream.Subscription, n int) []stream.Event {
	t.Helper()
	events := make([]stream.Event, 0, n)
	timeout := time.After(5 * time.Second)
	for len(events) < n {
		select {
		case evt, ok := <-sub.C():
			if !ok {
				t.Fatalf("channel closed after %d of %d events", len(events), n)
			}
			events = append(events, evt)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}
	return events
}

func TestSubscription_ReconnectDeliversInOrder(t *testing.T) {
	hold := make(chan struct{})
	srv := liveServer(t, func(conn net.Conn, attempt int) {
		switch attempt {
		case 1:
			for i := 1; i <= 3; i++ {
				_ = wsutil.WriteServerText(conn, statusFrame(fmt.Sprintf("wf-%d", i), workflow.PhaseRunning))
			}
			// Abrupt close: the deferred conn.Close drops the connection.
		default:
			for i := 4; i <= 5; i++ {
				_ = wsutil.WriteServerText(conn, statusFrame(fmt.Sprintf("wf-%d", i), workflow.PhaseRunning))
			}
			<-hold
		}
	})
	t.Cleanup(func() { close(hold) })

	rec := &stateRecorder{}
	sub, err := stream.Dial(context.Background(), srv.URL, "wf-1",
		stream.WithLogger(testLogger()),
		stream.WithBackoff(backoff.NewConstant(10*time.Millisecond)),
		stream.WithStateFunc(rec.record),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sub.Cancel()

	events := collect(t, sub, 5)
	for i, evt := range events {
		if evt.Err != nil {
			t.Fatalf("event %d carries error: %v", i, evt.Err)
		}
		want := fmt.Sprintf("wf-%d", i+1)
		if evt.WorkflowID != want {
			t.Errorf("event %d: WorkflowID = %q, want %q (order or replay violated)", i, evt.WorkflowID, want)
		}
	}

	wantStates := []stream.State{
		stream.StateConnecting,
		stream.StateOpen,
		stream.StateReconnecting,
		stream.StateConnecting,
		stream.StateOpen,
	}
	got := rec.snapshot()
	if len(got) < len(wantStates) {
		t.Fatalf("observed states %v, want prefix %v", got, wantStates)
	}
	for i, want := range wantStates {
		if got[i] != want {
			t.Fatalf("state[%d] = %q, want %q (full: %v)", i, got[i], want, got)
		}
	}
}

func TestSubscription_CancelClosesChannel(t *testing.T) {
	hold := make(chan struct{})
	srv := liveServer(t, func(conn net.Conn, _ int) {
		_ = wsutil.WriteServerText(conn, statusFrame("wf-1", workflow.PhaseRunning))
		<-hold
	})
	t.Cleanup(func() { close(hold) })

	sub, err := stream.Dial(context.Background(), srv.URL, "wf-1",
		stream.WithLogger(testLogger()),
		stream.WithBackoff(backoff.NewConstant(10*time.Millisecond)),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	collect(t, sub, 1)
	sub.Cancel()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Fatal("received an event after Cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after Cancel")
	}
	if got := sub.State(); got != stream.StateCancelled {
		t.Errorf("State = %q, want %q", got, stream.StateCancelled)
	}

	// Cancel is idempotent.
	sub.Cancel()
	_ = sub.Close()
}

func TestSubscription_CancelDuringConnectNeverHangs(t *testing.T) {
	hold := make(chan struct{})
	srv := liveServer(t, func(conn net.Conn, _ int) {
		<-hold
	})
	t.Cleanup(func() { close(hold) })

	// Cancel at varying instants inside the connect window. A cancellation
	// landing between the handshake and the connection being recorded must
	// still close the socket and terminate the event channel.
	for i := range 300 {
		sub, err := stream.Dial(context.Background(), srv.URL, "wf-1",
			stream.WithLogger(testLogger()),
			stream.WithBackoff(backoff.NewConstant(time.Millisecond)),
		)
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}

		time.Sleep(time.Duration(i%150) * 10 * time.Microsecond)
		sub.Cancel()

		select {
		case <-sub.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: subscription never terminated after Cancel (state=%s)", i, sub.State())
		}
		if _, ok := <-sub.C(); ok {
			t.Fatalf("iteration %d: event delivered after Cancel", i)
		}
		if got := sub.State(); got != stream.StateCancelled {
			t.Fatalf("iteration %d: State = %q, want %q", i, got, stream.StateCancelled)
		}
	}
}

func TestSubscription_BadFrameSurvivesReconnect(t *testing.T) {
	hold := make(chan struct{})
	srv := liveServer(t, func(conn net.Conn, attempt int) {
		switch attempt {
		case 1:
			_ = wsutil.WriteServerText(conn, statusFrame("wf-1", workflow.PhaseRunning))
			_ = wsutil.WriteServerText(conn, []byte(`{"workflow_id":"wf-1"}`)) // no type field
			<-hold
		default:
			_ = wsutil.WriteServerText(conn, statusFrame("wf-2", workflow.PhaseSucceeded))
			<-hold
		}
	})
	t.Cleanup(func() { close(hold) })

	sub, err := stream.Dial(context.Background(), srv.URL, "wf-1",
		stream.WithLogger(testLogger()),
		stream.WithBackoff(backoff.NewConstant(10*time.Millisecond)),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sub.Cancel()

	events := collect(t, sub, 3)

	if events[0].Err != nil || events[0].WorkflowID != "wf-1" {
		t.Errorf("event 0 = %+v, want clean wf-1 event", events[0])
	}

	var sErr *agentflow.SchemaError
	if !errors.As(events[1].Err, &sErr) {
		t.Fatalf("event 1: Err = %v, want SchemaError", events[1].Err)
	}
	if sErr.Field != "type" {
		t.Errorf("SchemaError.Field = %q, want %q", sErr.Field, "type")
	}

	if events[2].Err != nil || events[2].WorkflowID != "wf-2" {
		t.Errorf("event 2 = %+v, want clean wf-2 event after reconnect", events[2])
	}
}

func TestSubscription_TerminalEvent(t *testing.T) {
	hold := make(chan struct{})
	srv := liveServer(t, func(conn net.Conn, _ int) {
		_ = wsutil.WriteServerText(conn,
			[]byte(`{"type":"completed","workflow_id":"wf-1","ts":"2026-01-15T10:31:00Z","message":"all agents succeeded"}`))
		<-hold
	})
	t.Cleanup(func() { close(hold) })

	sub, err := stream.Dial(context.Background(), srv.URL, "wf-1",
		stream.WithLogger(testLogger()),
		stream.WithBackoff(backoff.NewConstant(10*time.Millisecond)),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sub.Cancel()

	evt := collect(t, sub, 1)[0]
	if evt.Type != stream.EventCompleted {
		t.Errorf("Type = %q, want %q", evt.Type, stream.EventCompleted)
	}
	if !evt.Terminal() {
		t.Error("Terminal() = false for completed event")
	}
	if evt.Message != "all agents succeeded" {
		t.Errorf("Message = %q", evt.Message)
	}
}

func TestSubscription_AuthHeaderOnHandshake(t *testing.T) {
	hold := make(chan struct{})
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Authorization")
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		defer conn.Close()
		<-hold
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(hold) })

	sub, err := stream.Dial(context.Background(), srv.URL, "wf-1",
		stream.WithLogger(testLogger()),
		stream.WithAPIKey("af_secret"),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sub.Cancel()

	select {
	case auth := <-got:
		if auth != "Bearer af_secret" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer af_secret")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handshake never reached the server")
	}
}

func TestDial_Validation(t *testing.T) {
	var vErr *agentflow.ValidationError

	if _, err := stream.Dial(context.Background(), "http://localhost:8080", ""); !errors.As(err, &vErr) {
		t.Errorf("empty id: err = %v, want ValidationError", err)
	}
	if _, err := stream.Dial(context.Background(), "", "wf-1"); !errors.As(err, &vErr) {
		t.Errorf("empty base URL: err = %v, want ValidationError", err)
	}
	if _, err := stream.Dial(context.Background(), "ftp://host", "wf-1"); !errors.As(err, &vErr) {
		t.Errorf("bad scheme: err = %v, want ValidationError", err)
	}
}
