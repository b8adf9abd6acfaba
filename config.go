package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SKETCHBOARD"

type Config struct {
	addr      string
	bind      string
	discover  time.Duration
	height    int
	history   int
	host      bool
	mdns      bool
	output    string
	port      int
	queue     int
	reconnect bool
	verbose   bool
	width     int
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return c.validateSize()
}

func (c *Config) validateSize() error {
	if c.width < 1 || c.height < 1 {
		return fmt.Errorf("invalid board size %dx%d", c.width, c.height)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.output == "" {
		return errors.New("--output is required")
	}
	return c.validateSize()
}

func (c *Config) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sketchboard",
		Short:         "A shared whiteboard for the local network.",
		SilenceErrors: true,
		Version:       releaseVersion,
	}

	pfs := cmd.PersistentFlags()
	normalize(pfs)
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug output (env: SKETCHBOARD_VERBOSE)")
	pfs.IntVar(&cfg.width, "width", 1024, "board width in pixels (env: SKETCHBOARD_WIDTH)")
	pfs.IntVar(&cfg.height, "height", 768, "board height in pixels (env: SKETCHBOARD_HEIGHT)")
	bindFlags(v, pfs)

	cmd.AddCommand(newServeCmd(cfg, v), newDrawCmd(cfg, v), newRenderCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sketchboard v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func normalize(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// bindFlags lets SKETCHBOARD_* variables set any flag not given on the
// command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func relayFlags(cfg *Config, fs *pflag.FlagSet) {
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SKETCHBOARD_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8888, "port to listen on (env: SKETCHBOARD_PORT)")
	fs.IntVar(&cfg.history, "history", 100000, "messages kept for late joiners, 0 for no limit (env: SKETCHBOARD_HISTORY)")
	fs.BoolVar(&cfg.mdns, "mdns", true, "advertise the relay on the local network (env: SKETCHBOARD_MDNS)")
}

func newServeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay host and browser client.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	normalize(fs)
	relayFlags(cfg, fs)
	bindFlags(v, fs)

	return cmd
}

func newDrawCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw [link]",
		Short: "Open the desktop board, joining the host in link.",
		Long: "Open the desktop board. The link may be a sketchboard://host:port share link,\n" +
			"a ws:// or http:// URL, or host:port. Without one, a host is looked up on the\n" +
			"local network, falling back to --addr. With --host, a relay is started first.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runDraw(cmd, cfg, args)
		},
	}

	fs := cmd.Flags()
	normalize(fs)
	relayFlags(cfg, fs)
	fs.StringVarP(&cfg.addr, "addr", "a", "localhost:8888", "relay to join when no link is given (env: SKETCHBOARD_ADDR)")
	fs.DurationVar(&cfg.discover, "discover", 2*time.Second, "how long to look for a host on the network, 0 to skip (env: SKETCHBOARD_DISCOVER)")
	fs.BoolVar(&cfg.host, "host", false, "also run the relay in this process (env: SKETCHBOARD_HOST)")
	fs.BoolVar(&cfg.reconnect, "reconnect", true, "redial with backoff when the connection drops (env: SKETCHBOARD_RECONNECT)")
	fs.IntVar(&cfg.queue, "queue", 1024, "outbound messages buffered while disconnected (env: SKETCHBOARD_QUEUE)")
	bindFlags(v, fs)

	return cmd
}

func newRenderCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [log]",
		Short: "Replay a JSON lines message log into a PNG or PDF.",
		Long: "Replay a JSON lines message log, such as the relay's /history, into a\n" +
			"headless board and write it to --output. Reads stdin when no log is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateRender(); err != nil {
				return err
			}
			return runRender(cmd, cfg, args)
		},
	}

	fs := cmd.Flags()
	normalize(fs)
	fs.StringVarP(&cfg.output, "output", "o", "whiteboard.png", "file to write, .png or .pdf (env: SKETCHBOARD_OUTPUT)")
	bindFlags(v, fs)

	return cmd
}
