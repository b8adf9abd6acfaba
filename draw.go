package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"SketchBoard/internal/board"
	"SketchBoard/internal/canvas"
	boardnet "SketchBoard/internal/net"
	"SketchBoard/internal/ui"

	"github.com/spf13/cobra"
)

func runDraw(cmd *cobra.Command, cfg *Config, args []string) error {
	logger := cfg.logger()
	canvas.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var shareLink string
	if cfg.host {
		serveInBackground(ctx, newServer(cfg, logger), logger)
		if adv := advertise(cfg, logger); adv != nil {
			defer adv.Shutdown()
		}
		shareLink = boardnet.ShareLink(boardnet.OutgoingIP(), cfg.port)
		printShare(cmd.OutOrStdout(), boardnet.OutgoingIP(), cfg.port)
	}

	url, err := resolveURL(ctx, cfg, args, logger)
	if err != nil {
		return err
	}

	opts := []boardnet.ClientOption{
		boardnet.WithClientLogger(logger),
		boardnet.WithQueueSize(cfg.queue),
	}
	if cfg.reconnect {
		opts = append(opts, boardnet.WithReconnect(boardnet.DefaultBackoff()))
	}
	client := boardnet.NewClient(url, opts...)
	defer client.Close()

	surface := board.New(cfg.width, cfg.height, board.WithTransport(client), board.WithLogger(logger))
	bw := ui.NewBoardWidget(surface, logger)
	client.OnMessage(bw.Receive)
	client.OnStatus(bw.SetStatus)

	ui.RunApp(bw, "SketchBoard", shareLink, func() {
		go func() {
			if err := client.Run(ctx); err != nil {
				bw.SetStatus("Disconnected: " + err.Error())
			}
		}()
	})
	return nil
}

// resolveURL picks the relay to join: an explicit link, then a host found
// on the network, then --addr. A local relay always wins in host mode.
func resolveURL(ctx context.Context, cfg *Config, args []string, logger *slog.Logger) (string, error) {
	switch {
	case len(args) == 1:
		return boardnet.WebSocketURL(args[0])
	case cfg.host:
		return boardnet.WebSocketURL(boardnet.ShareLink("localhost", cfg.port))
	}

	if cfg.discover > 0 {
		addr, err := boardnet.Discover(ctx, cfg.discover)
		switch {
		case err == nil:
			logger.Info("found host", slog.String("addr", addr))
			return boardnet.WebSocketURL(addr)
		case errors.Is(err, boardnet.ErrNoHost):
			logger.Info("no host found on the network", slog.String("fallback", cfg.addr))
		default:
			logger.Warn("discovery failed", slog.String("err", err.Error()))
		}
	}
	return boardnet.WebSocketURL(cfg.addr)
}
