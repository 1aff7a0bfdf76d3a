package server

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"log/slog"
	"net/http"

	"github.com/shirou/gopsutil/process"
)

type HealthServer struct {
	log      *slog.Logger
	process  *process.Process
	registry contract.IPresenceRegistry
}

func NewHealthServer(log *slog.Logger, p *process.Process, registry contract.IPresenceRegistry) *HealthServer {
	return &HealthServer{log: log, process: p, registry: registry}
}

// Health reports process stats and the number of online identities.
func (s *HealthServer) Health(w http.ResponseWriter, _ *http.Request) {
	stats, err := observability.ReadProcessStats(s.process)
	if err != nil {
		s.log.Error("Failed to read process stats", "error", err)
		writeStatus(s.log, w, http.StatusServiceUnavailable, "process stats unavailable")
		return
	}
	stats.OnlineUsers = s.registry.Len()
	writeJSON(s.log, w, http.StatusOK, stats)
}
