// Backend is a simple test HTTP server used for gateway testing.
// It provides /health plus echo-style API endpoints.
//
// Usage:
//
//	go run ./scripts/backend -port 8081 -name users-1
//
// The server logs all requests and tags every response with its instance
// name, which makes pool distribution visible when running several copies.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	name := flag.String("name", "backend-1", "instance name reported in responses")
	delay := flag.Duration("delay", 0, "artificial latency added to every response")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "instance": *name})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if *delay > 0 {
			time.Sleep(*delay)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		// log request for visibility when running multiple backends
		log.Printf("request: method=%s path=%s query=%s from=%s correlation=%s",
			r.Method, r.URL.Path, r.URL.RawQuery, r.RemoteAddr, r.Header.Get("X-Correlation-ID"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       uuid.NewString(),
			"instance": *name,
			"method":   r.Method,
			"path":     r.URL.Path,
			"query":    r.URL.RawQuery,
			"body":     string(body),
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("backend %s listening on %s", *name, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
