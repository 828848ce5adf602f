package server

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jkvs/internal/metrics"
)

// StartAdmin поднимает admin HTTP-листенер: /metrics (Prometheus)
// и /stats (тот же JSON, что отдаёт команда STATS). Неблокирующий;
// ошибка листенера логируется и не роняет процесс.
func StartAdmin(addr string) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(metrics.Default().ToJSON())
	})

	go func() {
		log.Printf("admin listening on %s", addr)
		if err := http.ListenAndServe(addr, r); err != nil {
			log.Println("warning: admin listener error:", err)
		}
	}()
}
