package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-drift/fiber/cmd/fiber/internal/demo"
	"github.com/go-drift/fiber/pkg/config"
	"github.com/go-drift/fiber/pkg/fiber"
	"github.com/go-drift/fiber/pkg/platform"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run a demo",
		Long: `Run one of the bundled demos.

Settings come from fiber.yaml in the working directory (or --dir), and flags
override them.

On the headless renderer the demo's scripted input is replayed and the final
frame's paint commands are printed. On the terminal renderer the demo is
interactive; press Ctrl+C to quit.

Flags:
  --renderer NAME    headless or terminal
  --debug-port PORT  Serve /component-tree, /element-tree, /frames and /metrics
  --dir DIR          Directory to read fiber.yaml from (default: .)
  --verbose          Log debug lines and stack traces`,
		Usage: "fiber run <demo> [--renderer NAME] [--debug-port PORT] [--dir DIR] [--verbose]",
		Run:   runRun,
	})
}

type runOptions struct {
	demo      string
	dir       string
	renderer  string
	debugPort int
	verbose   bool
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := runOptions{dir: "."}
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}
		switch arg {
		case "--renderer":
			v, err := value()
			if err != nil {
				return opts, err
			}
			opts.renderer = v
		case "--debug-port":
			v, err := value()
			if err != nil {
				return opts, err
			}
			port, err := strconv.Atoi(v)
			if err != nil {
				return opts, fmt.Errorf("invalid --debug-port %q", v)
			}
			opts.debugPort = port
		case "--dir":
			v, err := value()
			if err != nil {
				return opts, err
			}
			opts.dir = v
		case "--verbose":
			opts.verbose = true
		default:
			if strings.HasPrefix(arg, "--") {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			positional = append(positional, arg)
		}
	}
	if len(positional) != 1 {
		return opts, fmt.Errorf("exactly one demo is required\n\nUsage: fiber run <demo>")
	}
	opts.demo = positional[0]
	return opts, nil
}

// resolveConfig reads fiber.yaml and applies flag overrides.
func resolveConfig(opts runOptions) (config.Config, error) {
	cfg, err := config.Resolve(opts.dir)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.renderer != "" {
		cfg.App.Renderer = config.Renderer(opts.renderer)
	}
	if opts.debugPort != 0 {
		cfg.Runtime.DebugPort = opts.debugPort
	}
	if opts.verbose {
		cfg.Runtime.Verbose = true
	}
	return cfg, cfg.Validate()
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	d, ok := demo.Lookup(opts.demo)
	if !ok {
		return fmt.Errorf("unknown demo %q (see fiber demos)", opts.demo)
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := fiber.NewPlatform(cfg)
	if err != nil {
		return err
	}
	m := p.Measurer()
	headless, isHeadless := p.(*platform.Headless)
	if isHeadless {
		headless.Events = d.Script(m)
	}
	if err := fiber.RunOn(ctx, d.Root(m), cfg, p); err != nil {
		return err
	}

	if isHeadless {
		fmt.Fprintf(stdout, "%s: %s, %d frames\n", cfg.App.Title, d.Name, headless.Frames())
		if frame := headless.LastFrame(); frame != nil {
			fmt.Fprintln(stdout, frame)
		}
	}
	return nil
}
