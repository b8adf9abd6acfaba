package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"SketchBoard/internal/board"
	"SketchBoard/internal/canvas"
	"SketchBoard/internal/export"
	"SketchBoard/internal/state"

	"github.com/spf13/cobra"
)

const maxLine = 1 << 20

func runRender(cmd *cobra.Command, cfg *Config, args []string) error {
	logger := cfg.logger()
	canvas.SetLogger(logger)

	if _, err := export.FormatOf(cfg.output); err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	s := board.New(cfg.width, cfg.height, board.WithLogger(logger))
	applied, skipped, err := replayLog(in, s, logger)
	if err != nil {
		return err
	}

	if err := export.SaveFile(cfg.output, s.Snapshot()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d messages to %s (%d skipped)\n", applied, cfg.output, skipped)
	return nil
}

// replayLog reads one message per line, orders them the way the relay
// does and paints them onto s.
func replayLog(r io.Reader, s *board.Surface, logger *slog.Logger) (applied, skipped int, err error) {
	h := state.NewHistory(0)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLine)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		m, err := state.Decode(sc.Bytes())
		if err != nil {
			logger.Debug("skipping line", slog.Int("line", line), slog.String("err", err.Error()))
			skipped++
			continue
		}
		if !h.Add(m) {
			skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, fmt.Errorf("reading log: %w", err)
	}

	msgs := h.Ordered()
	failed := s.ApplyAll(msgs)
	return len(msgs) - failed, skipped + failed, nil
}
