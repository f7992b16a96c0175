package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeRect is a JSON-safe layout box.
type SafeRect struct {
	Left   SafeFloat `json:"left"`
	Top    SafeFloat `json:"top"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

// SnapshotSource is what the debug server inspects. [*Worker] implements it.
type SnapshotSource interface {
	Snapshot() *Snapshot
	Trace() *FrameTraceBuffer
}

// DebugServer serves tree inspection, frame timings and Prometheus metrics
// over HTTP. Handlers only read published snapshots, never the live trees.
type DebugServer struct {
	source   SnapshotSource
	gatherer prometheus.Gatherer

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewDebugServer creates a server reading from source and exposing the
// metrics in gatherer.
func NewDebugServer(source SnapshotSource, gatherer prometheus.Gatherer) *DebugServer {
	return &DebugServer{source: source, gatherer: gatherer}
}

// Handler returns the server's routes.
func (d *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/component-tree", d.handleComponentTree)
	mux.HandleFunc("/element-tree", d.handleElementTree)
	mux.HandleFunc("/frames", d.handleFrames)
	mux.HandleFunc("/health", handleHealth)
	if d.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start binds port (0 for an ephemeral port) and serves in the background.
// It returns the bound port; calling it again while running returns the
// current port.
func (d *DebugServer) Start(port int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.server != nil {
		return d.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}
	server := &http.Server{Handler: d.Handler(), ReadHeaderTimeout: 5 * time.Second}
	d.server = server
	d.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			d.mu.Lock()
			d.server = nil
			d.listener = nil
			d.mu.Unlock()
		}
	}()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop gracefully shuts the server down.
func (d *DebugServer) Stop() {
	d.mu.Lock()
	server := d.server
	d.server = nil
	d.listener = nil
	d.mu.Unlock()

	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// Serve starts the server on port and stops it when ctx is done.
func (d *DebugServer) Serve(ctx context.Context, port int) error {
	if _, err := d.Start(port); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

func (d *DebugServer) handleComponentTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := d.source.Snapshot()
	if snap == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, struct {
		Frame uint64          `json:"frame"`
		Nodes []ComponentInfo `json:"nodes"`
		State StateCounts     `json:"states"`
	}{snap.Frame, snap.Components, snap.States})
}

func (d *DebugServer) handleElementTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := d.source.Snapshot()
	if snap == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, struct {
		Frame uint64        `json:"frame"`
		Nodes []ElementInfo `json:"nodes"`
	}{snap.Frame, snap.Elements})
}

// handleFrames returns recent frame samples. ?limit=N keeps the newest N,
// ?min_ms=X keeps frames at least X ms long.
func (d *DebugServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	trace := d.source.Trace()
	if trace == nil {
		http.Error(w, "frame tracing disabled", http.StatusServiceUnavailable)
		return
	}
	resp := trace.Snapshot()

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
		for _, s := range resp.Samples {
			if s.FrameMs >= v {
				filtered = append(filtered, s)
			}
		}
		resp.Samples = filtered
	}
	if value := r.URL.Query().Get("limit"); value != "" {
		if limit, err := strconv.Atoi(value); err == nil && limit > 0 && len(resp.Samples) > limit {
			resp.Samples = resp.Samples[len(resp.Samples)-limit:]
		}
	}
	writeJSON(w, resp)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// writeJSON encodes to a buffer first so encoding errors still produce a
// proper status.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}
