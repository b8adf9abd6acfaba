package net

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"SketchBoard/internal/board"
	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	timeout = 10 * time.Second
	qrSize  = 320
)

//go:embed web/index.html
var indexHTML []byte

//go:embed web/app.css
var appCSS []byte

//go:embed web/app.js
var appJS []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ServerConfig struct {
	Bind         string
	Port         int
	Width        int
	Height       int
	HistoryLimit int
	Version      string
}

// Server is the relay host: it serves the browser client, the websocket
// endpoint and read-only views of the mirrored board.
type Server struct {
	cfg    ServerConfig
	hub    *Hub
	logger *slog.Logger
}

func NewServer(cfg ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mirror := board.New(cfg.Width, cfg.Height, board.WithLogger(logger.With(slog.String("component", "mirror"))))
	return &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.HistoryLimit, mirror, logger.With(slog.String("component", "hub"))),
		logger: logger,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port))
}

// Handler returns the relay routes. The hub must be running for /ws to
// accept peers; ctx bounds the lifetime of every websocket connection.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		s.logger.Error("handler panic", slog.String("path", r.URL.Path), slog.Any("panic", i))
		securityHeaders(w)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}

	mux.GET("/", serveAsset("text/html; charset=utf-8", indexHTML))
	mux.GET("/assets/app.css", serveAsset("text/css; charset=utf-8", appCSS))
	mux.GET("/assets/app.js", serveAsset("application/javascript; charset=utf-8", appJS))
	mux.GET("/ws", s.serveWS(ctx))
	mux.GET("/healthz", serveText("ok\n"))
	mux.GET("/version", serveText("sketchboard v"+s.cfg.Version+"\n"))
	mux.GET("/qr", serveQR)
	mux.GET("/snapshot.png", s.serveSnapshot("image/png", (*board.Surface).ExportPNG))
	mux.GET("/snapshot.pdf", s.serveSnapshot("application/pdf", (*board.Surface).ExportPDF))
	mux.GET("/history", s.serveHistory)

	return mux
}

// ListenAndServe runs the hub and the HTTP server until ctx ends, then shuts
// both down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(ctx),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: timeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", "http://"+srv.Addr+"/"))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("relay: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:; img-src 'self' data: blob:")
}

func serveAsset(contentType string, body []byte) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(w)
		_, _ = w.Write(body)
	}
}

func serveText(body string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		_, _ = io.WriteString(w, body)
	}
}

func (s *Server) serveWS(ctx context.Context) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Debug("upgrade failed", slog.String("addr", r.RemoteAddr), slog.String("err", err.Error()))
			return
		}
		s.hub.attach(ctx, conn, r.RemoteAddr)
	}
}

// serveQR encodes the address the request reached us on, so a phone on the
// same network can open the browser client.
func serveQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	png, err := qrcode.Encode(scheme+"://"+r.Host+"/", qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	securityHeaders(w)
	_, _ = w.Write(png)
}

func (s *Server) serveSnapshot(contentType string, export func(*board.Surface, io.Writer) error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(w)
		if err := export(s.hub.Mirror(), w); err != nil {
			s.logger.Warn("snapshot failed", slog.String("path", r.URL.Path), slog.String("err", err.Error()))
		}
	}
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(w)

	for _, m := range s.hub.History() {
		data, err := state.Encode(m)
		if err != nil {
			continue
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return
		}
	}
}
