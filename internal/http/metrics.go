package httpapi

import (
	"net/http"
	"path/filepath"

	"astro-admin-go/internal/services"

	"github.com/gorilla/websocket"
)

type HealthResponse struct {
	Status        string                `json:"status"`
	SignedIn      bool                  `json:"signedIn"`
	SocketClients int                   `json:"socketClients"`
	Sample        services.HealthSample `json:"sample"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	sample := services.CaptureHealth(filepath.Dir(s.Config.StoragePath), s.Started)
	sample.Slices = len(s.Store.Names())
	_, err := s.Auth.Current()
	resp := HealthResponse{Status: "ok", SignedIn: err == nil, Sample: sample}
	if s.Hub != nil {
		resp.SocketClients = s.Hub.Clients()
	}
	WriteJSON(w, http.StatusOK, resp)
}

type snapshotMessage struct {
	Type  string         `json:"type"`
	State map[string]any `json:"state"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StateSocket sends the full snapshot once, then every store event.
func (s *Server) StateSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := conn.WriteJSON(snapshotMessage{Type: "snapshot", State: s.Store.Snapshot()}); err != nil {
		_ = conn.Close()
		return
	}
	s.Hub.Add(conn)
	defer func() {
		s.Hub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
