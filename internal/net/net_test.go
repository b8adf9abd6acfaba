package net

import (
	"errors"
	"testing"
	"time"

	"SketchBoard/internal/state"
)

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, time.Second},
		{2, 2 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{40, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}

	if got := (Backoff{}).Delay(1); got != time.Second {
		t.Errorf("zero Backoff Delay(1) = %v, want defaults", got)
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		link string
		want string
		err  bool
	}{
		{"sketchboard://192.168.1.4:8080", "ws://192.168.1.4:8080/ws", false},
		{"192.168.1.4:8080", "ws://192.168.1.4:8080/ws", false},
		{"http://board.lan:9000/", "ws://board.lan:9000/ws", false},
		{"https://board.example.com", "wss://board.example.com/ws", false},
		{"ws://localhost:8080/ws?x=1", "ws://localhost:8080/ws", false},
		{"ftp://host:21", "", true},
		{"sketchboard://", "", true},
		{"  ", "", true},
	}
	for _, tt := range tests {
		got, err := WebSocketURL(tt.link)
		if (err != nil) != tt.err {
			t.Errorf("WebSocketURL(%q) error = %v", tt.link, err)
			continue
		}
		if err != nil && !errors.Is(err, ErrBadLink) {
			t.Errorf("WebSocketURL(%q) error = %v, want ErrBadLink", tt.link, err)
		}
		if got != tt.want {
			t.Errorf("WebSocketURL(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestShareLinkRoundTrip(t *testing.T) {
	link := ShareLink("10.0.0.7", 8080)
	if link != "sketchboard://10.0.0.7:8080" {
		t.Fatalf("ShareLink = %q", link)
	}
	if u, err := WebSocketURL(link); err != nil || u != "ws://10.0.0.7:8080/ws" {
		t.Errorf("WebSocketURL(%q) = %q, %v", link, u, err)
	}
}

func TestClientSendQueue(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws", WithQueueSize(1))
	m := state.NewSegment(state.ToolPencil, "#000000", 2, state.Point{}, state.Point{X: 1, Y: 1})

	if err := c.Send(m); err != nil {
		t.Fatalf("first Send = %v", err)
	}
	if err := c.Send(m); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Send on full queue = %v, want ErrQueueFull", err)
	}

	c.Close()
	c.Close()
	if err := c.Send(m); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}
