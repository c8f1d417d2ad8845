package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// wsWriteTimeout bounds a single event write to one client.
const wsWriteTimeout = 10 * time.Second

// handleEvents upgrades to a websocket and streams run lifecycle events to
// the dashboard until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The report API already allows any origin via CORS.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch, cancel := s.bus.Subscribe()
	defer cancel()

	s.log.Debug().Msg("Events subscriber connected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			cancelWrite()
			if err != nil {
				s.log.Debug().Err(err).Msg("Events subscriber dropped")
				return
			}
		}
	}
}
