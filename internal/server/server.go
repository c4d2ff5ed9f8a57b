// Package server builds the artifact GLB and serves the companion static
// viewer page, reloading open pages when the descriptor changes on disk.
package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/openrelic/artifactview/internal/artifact"
	"github.com/openrelic/artifactview/internal/atlas"
	"github.com/openrelic/artifactview/internal/geometry"
	"github.com/openrelic/artifactview/internal/logger"
	"github.com/openrelic/artifactview/pkg/formats"
)

//go:embed static
var staticFS embed.FS

// ModelFileName is the fixed name under which the viewer page loads the
// reconstruction.
const ModelFileName = "artifact.glb"

// Server serves the static viewer page and the built reconstruction.
type Server struct {
	addr         string
	artifactPath string
	segments     int
	comp         *atlas.Compositor

	mu  sync.RWMutex
	glb []byte

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	upgrader websocket.Upgrader
}

// New creates a server for the given artifact descriptor.
func New(addr, artifactPath string, segments int) *Server {
	return &Server{
		addr:         addr,
		artifactPath: artifactPath,
		segments:     segments,
		comp:         atlas.New(),
		clients:      make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run builds the reconstruction, starts the HTTP server and watches the
// descriptor for changes until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		return err
	}

	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	go s.watchDescriptor(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("viewer page served", zap.String("addr", s.addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler returns the HTTP handler serving the page, model and websocket.
func (s *Server) Handler() http.Handler {
	pages, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded at compile time; a missing subtree is a build
		// defect, not a runtime condition.
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(pages)))
	mux.HandleFunc("/"+ModelFileName, s.handleModel)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// rebuild loads the descriptor and regenerates the GLB. With no scan
// images configured the reconstruction is absent and the model endpoint
// serves nothing.
func (s *Server) rebuild(ctx context.Context) error {
	art, err := artifact.Load(s.artifactPath)
	if err != nil {
		return err
	}

	if len(art.Images) == 0 {
		logger.Info("no scan images configured, nothing to serve")
		s.mu.Lock()
		s.glb = nil
		s.mu.Unlock()
		return nil
	}

	sheet := s.comp.BuildSync(ctx, art.Images)
	if sheet == nil {
		return fmt.Errorf("atlas build cancelled: %w", ctx.Err())
	}

	mesh := geometry.Lathe(art.Profile().LathePoints(), s.segments)

	var buf bytes.Buffer
	if err := formats.WriteGLB(&buf, mesh, sheet, art.Name); err != nil {
		return fmt.Errorf("building %s: %w", ModelFileName, err)
	}

	s.mu.Lock()
	s.glb = buf.Bytes()
	s.mu.Unlock()

	logger.Info("reconstruction built",
		zap.Int("images", len(art.Images)),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}

// watchDescriptor polls the descriptor file and rebuilds on change.
func (s *Server) watchDescriptor(ctx context.Context) {
	var lastMod time.Time
	if info, err := os.Stat(s.artifactPath); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(s.artifactPath)
		if err != nil || !info.ModTime().After(lastMod) {
			continue
		}
		lastMod = info.ModTime()

		logger.Info("artifact descriptor changed, rebuilding")
		if err := s.rebuild(ctx); err != nil {
			logger.Error("rebuild failed", zap.Error(err))
			continue
		}
		s.broadcastReload()
	}
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	glb := s.glb
	s.mu.RUnlock()

	if len(glb) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Write(glb)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	// Drain reads so pings and close frames are processed; discard content.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcastReload tells every connected page to fetch the new model.
func (s *Server) broadcastReload() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	conn.Close()
	delete(s.clients, conn)
}
