package server

import (
	"chat-relay/observability"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Routes struct {
	Chat     *ChatServer
	Socket   *SocketServer
	Upload   *UploadServer
	Health   *HealthServer
	Gatherer prometheus.Gatherer
	Metrics  *observability.Metrics
}

// NewRouter mounts every endpoint of the chat service.
// Nil servers are left unmounted.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	timed := func(op string, h http.HandlerFunc) http.Handler {
		return instrument(routes.Metrics, op, h)
	}

	if routes.Chat != nil {
		mux.Handle("GET /messages", timed("get_messages", routes.Chat.GetMessages))
		mux.Handle("POST /messages", timed("post_message", routes.Chat.PostMessage))
		mux.HandleFunc("GET /{$}", routes.Chat.Root)
	}
	if routes.Socket != nil {
		mux.Handle("/socket", routes.Socket)
	}
	if routes.Upload != nil {
		mux.Handle("POST /upload-chat-image", timed("upload_image", routes.Upload.Upload))
		mux.Handle("GET "+ChatImagesRoute, routes.Upload.Files())
	}
	if routes.Health != nil {
		mux.HandleFunc("GET /healthz", routes.Health.Health)
	}
	if routes.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(routes.Gatherer, promhttp.HandlerOpts{}))
	}
	return allowCORS(mux)
}

func instrument(metrics *observability.Metrics, op string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.ObserveLatency(op, time.Since(start))
	})
}

// allowCORS lets browser clients on other origins call the API.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
