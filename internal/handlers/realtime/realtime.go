package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/realtime"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/utils"
)

const pingInterval = 25 * time.Second

type RealtimeHandler struct {
	hub *realtime.Hub
	jwt pkgauth.JWTServiceInterface
}

func New(hub *realtime.Hub, jwt pkgauth.JWTServiceInterface) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwt: jwt}
}

// Stream is the server-sent-events feed. EventSource cannot set headers, so
// the token arrives as a query parameter. Each client gets its own user
// channel plus the broadcast channel of its role.
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwt.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.hub.Subscribe(
		domain.UserChannel(claims.UserID),
		domain.RoleChannel(claims.Role),
	)
	defer sub.Close()

	fmt.Fprintf(w, "event: realtime:ready\ndata: {}\n\n")
	flusher.Flush()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event := <-sub.Events:
			data, err := json.Marshal(event.Payload)
			if err != nil {
				zap.L().Error("failed to encode event",
					zap.String("event", string(event.Name)), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()
		}
	}
}
