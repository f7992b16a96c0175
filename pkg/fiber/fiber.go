// Package fiber wires a platform loop, the engine worker and the optional
// debug server into a running application.
//
//	err := fiber.Run(ctx, core.Comp(app, nil), config.Default())
package fiber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/fiber/pkg/config"
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/engine"
	fibererrors "github.com/go-drift/fiber/pkg/errors"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/layout"
	"github.com/go-drift/fiber/pkg/platform"
)

const inboxSize = 64

// Run starts the platform selected by cfg and blocks until its loop exits.
func Run(ctx context.Context, root *core.Node, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return initError("fiber.Run", err)
	}
	p, err := NewPlatform(cfg)
	if err != nil {
		return err
	}
	return RunOn(ctx, root, cfg, p)
}

// NewPlatform builds the platform named by cfg.App.Renderer.
func NewPlatform(cfg config.Config) (platform.Platform, error) {
	switch cfg.App.Renderer {
	case config.RendererTerminal:
		t, err := platform.NewTerminal()
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.RendererHeadless, "":
		h := platform.NewHeadless(graphics.Size{Width: cfg.App.Width, Height: cfg.App.Height})
		h.Idle = cfg.Runtime.Idle
		return h, nil
	default:
		return nil, initError("fiber.NewPlatform", fmt.Errorf("unknown renderer %q", cfg.App.Renderer))
	}
}

// RunOn runs root on an already constructed platform. The worker, the
// platform loop and the debug server (when cfg.Runtime.DebugPort is set)
// share one lifetime: the first to fail stops the others, and the platform
// loop exiting stops everything.
func RunOn(ctx context.Context, root *core.Node, cfg config.Config, p platform.Platform) error {
	fibererrors.SetHandler(&fibererrors.LogHandler{Verbose: cfg.Runtime.Verbose})

	reg := prometheus.NewRegistry()
	coord := engine.NewCoordinator(inboxSize)
	worker := engine.NewWorker(coord, engine.WorkerConfig{
		Root:     root,
		Solver:   layout.NewFlow(p.Measurer()),
		Renderer: p.Renderer(),
		Waker:    p,
		Metrics:  engine.NewMetrics(reg),
	})

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		if err := p.Run(runCtx, coord); err != nil {
			return platformError(err)
		}
		return nil
	})
	// A worker error cancels gctx, which unblocks the platform.
	g.Go(func() error {
		return worker.Run(runCtx)
	})
	if port := cfg.Runtime.DebugPort; port != 0 {
		server := engine.NewDebugServer(worker, reg)
		g.Go(func() error {
			if err := server.Serve(runCtx, port); err != nil {
				return initError("fiber.DebugServer", err)
			}
			return nil
		})
	}

	err := g.Wait()
	worker.Wait()
	return err
}

func initError(op string, err error) error {
	return &fibererrors.FiberError{Op: op, Kind: fibererrors.KindInit, Err: err, Timestamp: time.Now()}
}

// platformError keeps structured errors as they are and tags anything else
// as a platform failure.
func platformError(err error) error {
	var fe *fibererrors.FiberError
	if errors.As(err, &fe) {
		return err
	}
	return &fibererrors.FiberError{Op: "fiber.Platform", Kind: fibererrors.KindPlatform, Err: err, Timestamp: time.Now()}
}
