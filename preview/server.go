package preview

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client is one websocket viewer with a serialized write path.
type client struct {
	conn     *websocket.Conn
	writeMux sync.Mutex
}

// Server broadcasts rendered ASCII frames to websocket viewers. It is a
// monitoring surface next to the SSH server: viewers all see the same
// render loop, they do not get independent playback.
type Server struct {
	addr     string
	upgrader websocket.Upgrader

	clientsMux sync.RWMutex
	clients    map[uuid.UUID]*client

	Frames chan string
}

func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[uuid.UUID]*client),
		Frames:  make(chan string, 1),
	}
}

// BroadcastFrame queues one rendered frame, replacing a stale undelivered
// one instead of blocking the render loop.
func (s *Server) BroadcastFrame(frame string) {
	select {
	case s.Frames <- frame:
	default:
		select {
		case <-s.Frames:
		default:
		}
		s.Frames <- frame
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade error: %v", err)
		return
	}
	id := uuid.New()
	s.clientsMux.Lock()
	s.clients[id] = &client{conn: conn}
	s.clientsMux.Unlock()
	log.Printf("New preview client connected %s", id)
}

func (s *Server) dropClient(id uuid.UUID) {
	s.clientsMux.Lock()
	if c, ok := s.clients[id]; ok {
		c.conn.Close()
		delete(s.clients, id)
	}
	s.clientsMux.Unlock()
	log.Printf("Preview client disconnected %s", id)
}

// fanOut delivers queued frames to every connected viewer, dropping any
// client whose write fails.
func (s *Server) fanOut(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-s.Frames:
			if !ok {
				return
			}
			s.clientsMux.RLock()
			snapshot := make(map[uuid.UUID]*client, len(s.clients))
			for id, c := range s.clients {
				snapshot[id] = c
			}
			s.clientsMux.RUnlock()

			for id, c := range snapshot {
				c.writeMux.Lock()
				err := c.conn.WriteMessage(websocket.TextMessage, []byte(frame))
				c.writeMux.Unlock()
				if err != nil {
					s.dropClient(id)
				}
			}
		}
	}
}

// PrepareEndpoints registers the stream and index handlers.
func (s *Server) PrepareEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("/stream", s.handleStream)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		html := `
<!DOCTYPE html>
<html>
<head>
    <title>ASCII Stream</title>
</head>
<body style="background:#000;color:#ddd">
    <h1>ASCII Video Preview ` + s.addr + `</h1>
    <pre id="screen"></pre>
    <script>
        const ws = new WebSocket("ws://" + location.host + "/stream");
        ws.onmessage = (e) => { document.getElementById("screen").textContent = e.data; };
    </script>
</body>
</html>`
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	})
}

// Run serves HTTP and fans frames out until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.PrepareEndpoints(mux)
	server := &http.Server{Addr: s.addr, Handler: mux}

	go s.fanOut(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Preview server running on %s", s.addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}
