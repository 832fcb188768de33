package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestNotify_OnlyReachesProjectSubscribers(t *testing.T) {
	hub := startHub(t)
	watcher := NewClient(hub, nil, "1", "7")
	other := NewClient(hub, nil, "2", "8")
	hub.Join(watcher)
	hub.Join(other)

	hub.Notify("1", "comment_added", map[string]string{"content": "hi"})

	msg := receive(t, watcher)
	if msg.Action != "comment_added" {
		t.Errorf("Action = %q", msg.Action)
	}
	// A second notification to project 2 proves the first never reached other.
	hub.Notify("2", "comment_deleted", nil)
	if msg := receive(t, other); msg.Action != "comment_deleted" {
		t.Errorf("other got %q first", msg.Action)
	}
}

func TestReply(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "1", "7")
	hub.Join(c)

	c.Reply(NewErrorMessage("nope"))
	msg := receive(t, c)
	if msg.Action != "error" {
		t.Fatalf("Action = %q", msg.Action)
	}
	payload, _ := msg.Payload.(map[string]any)
	if payload["message"] != "nope" {
		t.Errorf("payload = %v", msg.Payload)
	}
}

func TestUnregister_ClosesSend(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "1", "7")
	hub.Join(c)
	hub.Leave(c)

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("unexpected message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestRun_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	c := NewClient(hub, nil, "1", "7")
	hub.Join(c)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if _, ok := <-c.Send; ok {
		t.Error("send channel still open")
	}
}

func TestJoinLeave_AfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient(hub, nil, "1", "7")
	result := make(chan bool, 1)
	go func() {
		joined := hub.Join(c)
		hub.Leave(c)
		result <- joined
	}()

	select {
	case joined := <-result:
		if joined {
			t.Error("Join succeeded on a stopped hub")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Join or Leave blocked after shutdown")
	}
}
