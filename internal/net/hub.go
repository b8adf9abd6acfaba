package net

import (
	"context"
	"log/slog"
	"time"

	"SketchBoard/internal/board"
	"SketchBoard/internal/state"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxFrameSize = 64 << 10
	peerQueue    = 256
)

// peer is one websocket connection attached to the hub.
type peer struct {
	conn    *websocket.Conn
	send    chan []byte
	backlog chan [][]byte
	addr    string
}

type inbound struct {
	from *peer
	data []byte
}

// Hub relays drawing messages between peers. Registration, removal and every
// inbound message go through channels drained by a single goroutine, so the
// op log and the fan-out order are the same for everyone.
type Hub struct {
	peers   map[*peer]bool
	history *state.History
	clock   *state.Clock
	mirror  *board.Surface
	logger  *slog.Logger

	register chan *peer
	unreg    chan *peer
	inbound  chan inbound
}

// NewHub creates a hub that records at most historyLimit messages and
// replays every accepted message onto mirror, when mirror is not nil.
func NewHub(historyLimit int, mirror *board.Surface, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		peers:    make(map[*peer]bool),
		history:  state.NewHistory(historyLimit),
		clock:    state.NewClock(),
		mirror:   mirror,
		logger:   logger,
		register: make(chan *peer),
		unreg:    make(chan *peer),
		inbound:  make(chan inbound, peerQueue),
	}
}

// History returns the accepted messages in replay order.
func (h *Hub) History() []state.Message {
	return h.history.Ordered()
}

func (h *Hub) Mirror() *board.Surface { return h.mirror }

// Run serves the hub until ctx ends, then disconnects every peer.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for p := range h.peers {
				h.drop(p)
			}
			return

		case p := <-h.register:
			h.peers[p] = true
			p.backlog <- h.encodeHistory()
			h.logger.Info("peer joined",
				slog.String("addr", p.addr),
				slog.Int("peers", len(h.peers)),
				slog.Int("history", h.history.Len()))

		case p := <-h.unreg:
			if h.peers[p] {
				h.drop(p)
				h.logger.Info("peer left", slog.String("addr", p.addr), slog.Int("peers", len(h.peers)))
			}

		case in := <-h.inbound:
			h.relay(in)
		}
	}
}

func (h *Hub) relay(in inbound) {
	msg, err := state.Decode(in.data)
	if err != nil {
		h.logger.Debug("dropping message", slog.String("from", in.from.addr), slog.String("err", err.Error()))
		return
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Seq == 0 {
		msg.Seq = h.clock.Tick()
	} else {
		h.clock.Observe(msg.Seq)
	}
	if !h.history.Add(msg) {
		h.logger.Debug("dropping duplicate", slog.String("id", msg.ID))
		return
	}

	if h.mirror != nil {
		if err := h.mirror.Apply(msg); err != nil {
			h.logger.Warn("mirror replay failed", slog.String("id", msg.ID), slog.String("err", err.Error()))
		}
	}

	data, err := state.Encode(msg)
	if err != nil {
		h.logger.Warn("encode failed", slog.String("id", msg.ID), slog.String("err", err.Error()))
		return
	}
	for p := range h.peers {
		if p == in.from {
			continue
		}
		select {
		case p.send <- data:
		default:
			h.logger.Warn("peer too slow, disconnecting", slog.String("addr", p.addr))
			h.drop(p)
		}
	}
}

func (h *Hub) encodeHistory() [][]byte {
	msgs := h.history.Ordered()
	frames := make([][]byte, 0, len(msgs))
	for _, m := range msgs {
		data, err := state.Encode(m)
		if err != nil {
			continue
		}
		frames = append(frames, data)
	}
	return frames
}

func (h *Hub) drop(p *peer) {
	delete(h.peers, p)
	close(p.send)
}

// attach registers conn and serves it until the connection ends.
func (h *Hub) attach(ctx context.Context, conn *websocket.Conn, addr string) {
	p := &peer{
		conn:    conn,
		send:    make(chan []byte, peerQueue),
		backlog: make(chan [][]byte, 1),
		addr:    addr,
	}

	select {
	case h.register <- p:
	case <-ctx.Done():
		_ = conn.Close()
		return
	}

	go p.writePump()
	p.readPump(ctx, h)
}

func (p *peer) readPump(ctx context.Context, h *Hub) {
	defer func() {
		select {
		case h.unreg <- p:
		case <-ctx.Done():
		}
		_ = p.conn.Close()
	}()

	p.conn.SetReadLimit(maxFrameSize)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case h.inbound <- inbound{from: p, data: data}:
		case <-ctx.Done():
			return
		}
	}
}

// writePump sends the history snapshot taken at registration, then every
// relayed message, until the hub closes the send queue.
func (p *peer) writePump() {
	defer p.conn.Close()

	for _, data := range <-p.backlog {
		if err := p.write(data); err != nil {
			return
		}
	}
	for data := range p.send {
		if err := p.write(data); err != nil {
			return
		}
	}
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (p *peer) write(data []byte) error {
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, data)
}
