package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/color-picker-mcp/internal/clipboard"
	"github.com/ironsheep/color-picker-mcp/internal/config"
	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
	"github.com/ironsheep/color-picker-mcp/internal/server"
	"github.com/ironsheep/color-picker-mcp/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// runContext is passed to every command's Run method.
type runContext struct {
	cfg config.Config
	log *slog.Logger
	out io.Writer
}

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Print version information and exit"`

	LogLevel  string `help:"Log level: debug, info, warn or error (default from COLOR_PICKER_LOG_LEVEL)" placeholder:"LEVEL"`
	Clipboard string `help:"Clipboard sink: memory or system (default from COLOR_PICKER_CLIPBOARD)" placeholder:"SINK"`

	Serve        ServeCmd   `cmd:"" default:"1" help:"Serve MCP over stdin/stdout (default)"`
	Pick         PickCmd    `cmd:"" help:"Pick the color of one pixel of an image"`
	Convert      ConvertCmd `cmd:"" help:"Convert a color between formats"`
	PrintVersion VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// apply overlays command line settings on cfg.
func (c *CLI) apply(cfg *config.Config) error {
	if c.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(c.LogLevel)
	}
	if c.Clipboard != "" {
		cfg.Clipboard = strings.ToLower(c.Clipboard)
	}
	return cfg.Validate()
}

type ServeCmd struct{}

func (c *ServeCmd) Run(rc *runContext) error {
	sink, err := clipboard.New(rc.cfg.Clipboard)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc.log.Debug("starting server", "version", Version, "built", BuildTime, "commit", GitCommit)

	srv := server.New(rc.cfg, rc.log, sink)
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

type PickCmd struct {
	Image string `arg:"" type:"existingfile" help:"Image file to pick from"`

	X int `help:"Pixel X in the display buffer" default:"-1"`
	Y int `help:"Pixel Y in the display buffer" default:"-1"`

	PointerX   float64 `help:"Pointer X in viewport units, used when --x/--y are not given"`
	PointerY   float64 `help:"Pointer Y in viewport units, used when --x/--y are not given"`
	RectLeft   float64 `help:"Displayed image left edge"`
	RectTop    float64 `help:"Displayed image top edge"`
	RectWidth  float64 `help:"Displayed image width; zero means the display buffer width"`
	RectHeight float64 `help:"Displayed image height; zero means the display buffer height"`

	NoFit  bool   `help:"Sample the image at full resolution instead of fitting it to the display box"`
	Format string `help:"Output format" enum:"all,hex,rgb,rgba,hsl,hsla" default:"all"`
	Copy   bool   `help:"Also copy the color to the clipboard (hex when --format=all)"`
}

func (c *PickCmd) Validate(kctx *kong.Context) error {
	if (c.X >= 0) != (c.Y >= 0) {
		return fmt.Errorf("--x and --y must be given together")
	}
	if (c.RectWidth == 0) != (c.RectHeight == 0) {
		return fmt.Errorf("--rect-width and --rect-height must be given together")
	}
	return nil
}

// rect returns the display rectangle, or nil for an identity display.
func (c *PickCmd) rect() *picker.Rect {
	if c.RectWidth == 0 && c.RectHeight == 0 {
		return nil
	}
	return &picker.Rect{Left: c.RectLeft, Top: c.RectTop, Width: c.RectWidth, Height: c.RectHeight}
}

func (c *PickCmd) Run(rc *runContext) error {
	dec, err := imaging.NewImageCache().Load(c.Image)
	if err != nil {
		return err
	}

	maxW, maxH := rc.cfg.MaxDisplayWidth, rc.cfg.MaxDisplayHeight
	if c.NoFit {
		maxW, maxH = 0, 0
	}
	buf := imaging.NewBuffer(dec, maxW, maxH)
	rc.log.Debug("image loaded", "file", c.Image, "info", buf.Info())

	s := session.New()
	s.Load(buf, c.Image)

	var pick *session.Pick
	if c.X >= 0 {
		pick, err = s.PickAt(c.X, c.Y)
	} else {
		pick, err = s.Pick(picker.Point{X: c.PointerX, Y: c.PointerY}, c.rect())
	}
	if err != nil {
		return err
	}

	if c.Copy {
		if err := copyColor(rc.cfg, pick.Colors, c.Format); err != nil {
			return err
		}
	}
	return writeColor(rc.out, pick, pick.Colors, c.Format)
}

type ConvertCmd struct {
	Color  string `arg:"" help:"Color as hex (#rgb, #rrggbb, #rrggbbaa) or r,g,b[,a]"`
	Format string `help:"Output format" enum:"all,hex,rgb,rgba,hsl,hsla" default:"all"`
}

func (c *ConvertCmd) Run(rc *runContext) error {
	p, err := parseColor(c.Color)
	if err != nil {
		return err
	}
	rep := picker.Convert(p)
	return writeColor(rc.out, map[string]interface{}{
		"pixel":  p,
		"hsl":    picker.RGBToHSL(p.R, p.G, p.B),
		"colors": rep,
	}, rep, c.Format)
}

type VersionCmd struct{}

func (c *VersionCmd) Run(rc *runContext) error {
	fmt.Fprintf(rc.out, "color-picker-mcp %s\n", Version)
	fmt.Fprintf(rc.out, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(rc.out, "  Git commit: %s\n", GitCommit)
	return nil
}

// parseColor accepts hex notation or comma separated channels with an
// optional alpha in [0, 1].
func parseColor(s string) (picker.Pixel, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ",") {
		return picker.ParseHex(s)
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return picker.Pixel{}, fmt.Errorf("invalid color %q: want r,g,b or r,g,b,a", s)
	}

	var ch [3]int
	for i := range ch {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return picker.Pixel{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = v
	}

	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return picker.Pixel{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = a
	}
	return picker.NewPixel(ch[0], ch[1], ch[2], alpha), nil
}

// writeColor prints full as indented JSON for format "all", otherwise the
// single formatted string.
func writeColor(w io.Writer, full interface{}, rep picker.Representation, format string) error {
	if format == "all" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(full)
	}
	text, err := rep.Format(format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

func copyColor(cfg config.Config, rep picker.Representation, format string) error {
	if format == "all" {
		format = "hex"
	}
	// The in-process sink would be lost on exit.
	kind := cfg.Clipboard
	if kind == "memory" {
		kind = "system"
	}
	sink, err := clipboard.New(kind)
	if err != nil {
		return err
	}
	_, err = clipboard.Copy(sink, rep, format)
	return err
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("color-picker"),
		kong.Description("Pick colors from images and convert them between HEX, RGB(A) and HSL(A). Runs as an MCP server by default."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("color-picker-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)},
	)

	cfg, err := config.FromEnv(nil)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(cli.apply(&cfg))

	// stdout is reserved for protocol and command output.
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	server.Version = Version

	err = kctx.Run(&runContext{cfg: cfg, log: logger, out: os.Stdout})
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "err", err)
		os.Exit(1)
	}
}
