package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"SketchBoard/internal/canvas"
	boardnet "SketchBoard/internal/net"

	"github.com/hashicorp/mdns"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, cfg *Config) error {
	logger := cfg.logger()
	canvas.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newServer(cfg, logger)
	ip := boardnet.OutgoingIP()
	printShare(cmd.OutOrStdout(), ip, cfg.port)

	adv := advertise(cfg, logger)
	if adv != nil {
		defer adv.Shutdown()
	}

	logger.Info("starting sketchboard", slog.String("version", releaseVersion))
	return srv.ListenAndServe(ctx)
}

func newServer(cfg *Config, logger *slog.Logger) *boardnet.Server {
	return boardnet.NewServer(boardnet.ServerConfig{
		Bind:         cfg.bind,
		Port:         cfg.port,
		Width:        cfg.width,
		Height:       cfg.height,
		HistoryLimit: cfg.history,
		Version:      releaseVersion,
	}, logger)
}

func advertise(cfg *Config, logger *slog.Logger) *mdns.Server {
	if !cfg.mdns {
		return nil
	}
	adv, err := boardnet.Advertise(cfg.port)
	if err != nil {
		logger.Warn("mDNS advertisement disabled", slog.String("err", err.Error()))
		return nil
	}
	return adv
}

// printShare writes the share link, the browser URL and a terminal QR code
// of the browser URL.
func printShare(w io.Writer, ip string, port int) {
	web := "http://" + net.JoinHostPort(ip, strconv.Itoa(port)) + "/"

	fmt.Fprintf(w, "Share link:  %s\n", boardnet.ShareLink(ip, port))
	fmt.Fprintf(w, "Browser:     %s\n", web)

	q, err := qrcode.New(web, qrcode.Medium)
	if err != nil {
		return
	}
	fmt.Fprintln(w, q.ToSmallString(false))
}

// serveInBackground runs a relay for the lifetime of ctx, logging a failure
// instead of returning it.
func serveInBackground(ctx context.Context, srv *boardnet.Server, logger *slog.Logger) {
	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("relay stopped", slog.String("err", err.Error()))
		}
	}()
}
