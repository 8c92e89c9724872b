// Package sse streams events.Bus topics to HTTP clients as Server-Sent
// Events. Every playlist/brightness/editor stream endpoint shares this
// subscribe-and-flush loop.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
)

// keepAlivePeriod is how often a comment-only keepalive is written so
// intermediate proxies and the browser's own timeout don't drop an
// otherwise-idle connection.
const keepAlivePeriod = 15 * time.Second

// Stream subscribes to topic and writes every event (plus an immediate
// snapshot from initial) as an SSE "message" event until the client
// disconnects or the request context is canceled. It blocks for the
// lifetime of the connection.
func Stream(w http.ResponseWriter, r *http.Request, bus *events.Bus, topic events.Topic, initial any, logger zerolog.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := bus.Subscribe(topic)
	defer sub.Close()

	if initial != nil {
		if err := writeEvent(w, initial); err != nil {
			return
		}
		flusher.Flush()
	}

	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			if err := writeEvent(w, env.Payload); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				logger.Debug().Err(err).Msg("sse keepalive write failed, closing stream")
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
	return err
}
