package progress

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// SSEHandler returns an http.Handler that streams broadcaster events to
// the client as server-sent events. Client disconnect deregisters the
// observer and frees its queue.
func SSEHandler(b *Broadcaster) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		obs := b.Register()
		defer b.Deregister(obs.ID)

		for {
			select {
			case <-r.Context().Done():
				return
			case <-obs.Done():
				return
			case event := <-obs.Events():
				data, err := json.Marshal(event)
				if err != nil {
					zap.L().Error("marshal progress event", zap.Error(err))
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})
}
