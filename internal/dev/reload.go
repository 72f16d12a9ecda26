package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeFull  ReloadMessageType = "reload"
	ReloadTypeError ReloadMessageType = "error"
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is sent to browsers via WebSocket.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
	Code  string            `json:"code,omitempty"`
}

// Recorder receives reload server activity. *metrics.Collector implements it.
type Recorder interface {
	SetReloadClients(n int)
	Broadcast(msgType string)
}

const writeTimeout = 5 * time.Second

// ReloadServer manages WebSocket connections for browser reloads.
type ReloadServer struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	recorder Recorder
	logger   *slog.Logger
}

// NewReloadServer creates a new reload server. recorder may be nil.
func NewReloadServer(recorder Recorder, logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // the dev server is usually on another port than the app
			},
		},
		recorder: recorder,
		logger:   logger,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Debug("reload upgrade failed", "err", err)
		return
	}

	r.mu.Lock()
	r.clients[conn] = true
	count := len(r.clients)
	r.mu.Unlock()
	r.recordClients(count)
	r.logger.Debug("reload client connected", "clients", count)

	// Keep the connection until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.drop(conn)
}

// NotifyReload sends a full page reload message to all clients.
func (r *ReloadServer) NotifyReload() {
	r.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyError sends an error message to all clients.
func (r *ReloadServer) NotifyError(code, errMsg string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeError, Code: code, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (r *ReloadServer) ClearError() {
	r.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	r.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(r.clients))
	for client := range r.clients {
		clients = append(clients, client)
	}
	r.mu.RUnlock()

	if r.recorder != nil {
		r.recorder.Broadcast(string(msg.Type))
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	for _, client := range clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			r.drop(client)
		}
	}
}

func (r *ReloadServer) drop(conn *websocket.Conn) {
	r.mu.Lock()
	_, ok := r.clients[conn]
	delete(r.clients, conn)
	count := len(r.clients)
	r.mu.Unlock()

	if ok {
		conn.Close()
		r.recordClients(count)
	}
}

func (r *ReloadServer) recordClients(n int) {
	if r.recorder != nil {
		r.recorder.SetReloadClients(n)
	}
}

// ClientCount returns the number of connected clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close closes all client connections.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	for client := range r.clients {
		client.Close()
		delete(r.clients, client)
	}
	r.mu.Unlock()
	r.recordClients(0)
}

// ClientScript is served at /_routegen/client.js. Include it in the app's
// index.html during development to reload on route changes and show an
// overlay when generation fails.
const ClientScript = `(function () {
  'use strict';

  var script = document.currentScript;
  var origin = script ? new URL(script.src).host : location.host;
  var reconnectDelay = 1000;
  var maxReconnectDelay = 30000;

  function connect() {
    var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
    var ws = new WebSocket(protocol + '//' + origin + '/_routegen/reload');

    ws.onopen = function () {
      reconnectDelay = 1000;
    };

    ws.onmessage = function (e) {
      var msg;
      try {
        msg = JSON.parse(e.data);
      } catch (err) {
        return;
      }

      switch (msg.type) {
        case 'reload':
          location.reload();
          break;
        case 'error':
          console.error('[routegen]', msg.error);
          showErrorOverlay(msg.code, msg.error);
          break;
        case 'clear':
          clearErrorOverlay();
          break;
      }
    };

    ws.onclose = function () {
      setTimeout(function () {
        reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
        connect();
      }, reconnectDelay);
    };

    ws.onerror = function () {
      ws.close();
    };
  }

  function showErrorOverlay(code, error) {
    clearErrorOverlay();

    var overlay = document.createElement('div');
    overlay.id = 'routegen-error-overlay';
    overlay.style.cssText = 'position:fixed;inset:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;font-size:14px;padding:20px;overflow:auto;z-index:999999;';

    var title = document.createElement('h2');
    title.style.cssText = 'color:#ff5555;margin:0 0 20px;';
    title.textContent = code ? 'Route generation failed (' + code + ')' : 'Route generation failed';

    var pre = document.createElement('pre');
    pre.style.cssText = 'white-space:pre-wrap;word-wrap:break-word;background:#1a1a1a;padding:20px;border-radius:8px;border:1px solid #333;';
    pre.textContent = error;

    overlay.appendChild(title);
    overlay.appendChild(pre);
    document.body.appendChild(overlay);
  }

  function clearErrorOverlay() {
    var overlay = document.getElementById('routegen-error-overlay');
    if (overlay) {
      overlay.remove();
    }
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', connect);
  } else {
    connect();
  }
})();
`
