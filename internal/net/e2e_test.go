package net

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SketchBoard/internal/board"
	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
)

const pencilFrame = `{"id":"%s","seq":%d,"tool":"pencil","color":"#000000","lineWidth":6,"startX":10,"startY":100,"endX":190,"endY":100}`

type relay struct {
	srv  *Server
	http string
	ws   string
	ctx  context.Context
}

func startRelay(t *testing.T) *relay {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(ServerConfig{Width: 200, Height: 200, Version: "test"}, nil)
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Handler(ctx))
	t.Cleanup(ts.Close)
	t.Cleanup(cancel)

	return &relay{
		srv:  srv,
		http: ts.URL,
		ws:   "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
		ctx:  ctx,
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func frame(id string, seq int) []byte {
	return []byte(fmt.Sprintf(pencilFrame, id, seq))
}

func write(t *testing.T, conn *websocket.Conn, data []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) state.Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m, err := state.Decode(data)
	if err != nil {
		t.Fatalf("relayed frame does not decode: %v", err)
	}
	return m
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dark(img image.Image, x, y int) bool {
	r, _, _, _ := img.At(x, y).RGBA()
	return r < 0x8000
}

func TestRelayDoesNotEchoToSender(t *testing.T) {
	r := startRelay(t)
	a := dial(t, r.ws)
	b := dial(t, r.ws)

	write(t, a, frame("m1", 1))

	if got := read(t, b); got.ID != "m1" {
		t.Fatalf("peer received %q, want m1", got.ID)
	}

	_ = a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, data, err := a.ReadMessage(); err == nil {
		t.Errorf("sender received its own message back: %s", data)
	}
}

func TestRelayReplaysHistoryToLateJoiner(t *testing.T) {
	r := startRelay(t)
	a := dial(t, r.ws)

	write(t, a, frame("second", 2))
	write(t, a, frame("first", 1))
	waitFor(t, "history", func() bool { return len(r.srv.Hub().History()) == 2 })

	late := dial(t, r.ws)
	for _, want := range []string{"first", "second"} {
		if got := read(t, late); got.ID != want {
			t.Fatalf("late joiner got %q, want %q", got.ID, want)
		}
	}
}

func TestRelayDropsInvalidAndDuplicate(t *testing.T) {
	r := startRelay(t)
	a := dial(t, r.ws)
	b := dial(t, r.ws)

	write(t, a, []byte(`not json`))
	write(t, a, []byte(`{"tool":"spray","color":"#000000","lineWidth":1}`))
	write(t, a, frame("dup", 1))
	write(t, a, frame("dup", 1))
	write(t, a, frame("next", 2))

	for _, want := range []string{"dup", "next"} {
		if got := read(t, b); got.ID != want {
			t.Fatalf("peer got %q, want %q", got.ID, want)
		}
	}
	if n := len(r.srv.Hub().History()); n != 2 {
		t.Errorf("history holds %d messages, want 2", n)
	}
}

func TestRelayStampsUnstampedMessages(t *testing.T) {
	r := startRelay(t)
	a := dial(t, r.ws)
	b := dial(t, r.ws)

	write(t, a, []byte(`{"tool":"circle","color":"#ff0000","lineWidth":"3","startX":50,"startY":50,"endX":60,"endY":50}`))

	got := read(t, b)
	if got.ID == "" || got.Seq == 0 {
		t.Errorf("relayed message not stamped: id=%q seq=%d", got.ID, got.Seq)
	}
	if got.LineWidth != 3 {
		t.Errorf("lineWidth = %v, want 3", got.LineWidth)
	}
}

func TestRelayRoutes(t *testing.T) {
	r := startRelay(t)
	a := dial(t, r.ws)
	write(t, a, frame("m1", 1))
	waitFor(t, "history", func() bool { return len(r.srv.Hub().History()) == 1 })

	get := func(path string) (*http.Response, []byte) {
		t.Helper()
		resp, err := http.Get(r.http + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s = %d", path, resp.StatusCode)
		}
		return resp, body
	}

	tests := []struct {
		path        string
		contentType string
	}{
		{"/", "text/html; charset=utf-8"},
		{"/assets/app.js", "application/javascript; charset=utf-8"},
		{"/assets/app.css", "text/css; charset=utf-8"},
		{"/qr", "image/png"},
		{"/snapshot.pdf", "application/pdf"},
	}
	for _, tt := range tests {
		resp, _ := get(tt.path)
		if got := resp.Header.Get("Content-Type"); got != tt.contentType {
			t.Errorf("GET %s Content-Type = %q, want %q", tt.path, got, tt.contentType)
		}
		if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("GET %s is missing security headers", tt.path)
		}
	}

	if _, body := get("/healthz"); string(body) != "ok\n" {
		t.Errorf("/healthz = %q", body)
	}
	if _, body := get("/version"); string(body) != "sketchboard vtest\n" {
		t.Errorf("/version = %q", body)
	}

	_, body := get("/snapshot.png")
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("snapshot is not a PNG: %v", err)
	}
	if !dark(img, 100, 100) {
		t.Error("mirror snapshot is missing the relayed stroke")
	}

	_, body = get("/history")
	var lines int
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		if _, err := state.Decode(sc.Bytes()); err != nil {
			t.Errorf("history line %q: %v", sc.Text(), err)
		}
		lines++
	}
	if lines != 1 {
		t.Errorf("/history has %d lines, want 1", lines)
	}
}

func TestClientRoundTrip(t *testing.T) {
	r := startRelay(t)

	ca := NewClient(r.ws)
	a := board.New(200, 200, board.WithTransport(ca))

	cb := NewClient(r.ws)
	b := board.New(200, 200)
	cb.OnMessage(func(data []byte) { _ = b.HandleMessage(data) })

	connected := make(chan string, 4)
	cb.OnStatus(func(s string) { connected <- s })

	// Drawn before either client connects: queued, then flushed.
	a.PointerDown(10, 100)
	a.PointerMove(190, 100)
	a.PointerUp()

	go func() { _ = ca.Run(r.ctx) }()
	go func() { _ = cb.Run(r.ctx) }()

	select {
	case s := <-connected:
		if !strings.HasPrefix(s, "Connected") {
			t.Errorf("status = %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected")
	}

	waitFor(t, "remote stroke", func() bool { return dark(b.Snapshot(), 100, 100) })
	if dark(b.Snapshot(), 100, 20) {
		t.Error("replay painted outside the segment")
	}
}

func TestClientRunWithoutReconnectFails(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := NewClient(url).Run(ctx); err == nil {
		t.Error("Run against a dead host returned nil")
	}
}

func TestClientWithReconnectStopsOnCancel(t *testing.T) {
	r := startRelay(t)
	peer := dial(t, r.ws)

	c := NewClient(r.ws, WithReconnect(Backoff{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond}))
	statuses := make(chan string, 16)
	c.OnStatus(func(s string) { statuses <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case s := <-statuses:
		if !strings.HasPrefix(s, "Connected") {
			t.Fatalf("status = %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected")
	}

	if err := c.Send(state.NewSegment(state.ToolPencil, "#000000", 2, state.Point{}, state.Point{X: 5, Y: 5})); err != nil {
		t.Fatal(err)
	}
	if got := read(t, peer); got.Tool != state.ToolPencil {
		t.Errorf("peer got %+v", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
