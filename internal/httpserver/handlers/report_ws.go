package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

const wsWriteTimeout = 5 * time.Second

// ReportStream pushes every report state change (showing, idle) to a
// websocket client until it disconnects.
func ReportStream(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := &websocket.AcceptOptions{}
		if len(d.AllowedHosts) > 0 {
			opts.OriginPatterns = d.AllowedHosts
		}

		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			d.Logger.Warn("websocket upgrade failed", logger.Error(err))
			return
		}
		defer func() { _ = conn.CloseNow() }()

		// Client messages are ignored; CloseRead cancels ctx on disconnect
		ctx := conn.CloseRead(r.Context())

		notices, cancel := d.Notifier.Subscribe()
		defer cancel()

		d.Logger.Debug("report subscriber connected",
			logger.String("remote_ip", r.RemoteAddr))

		for {
			select {
			case <-ctx.Done():
				d.Logger.Debug("report subscriber disconnected",
					logger.String("remote_ip", r.RemoteAddr))
				return

			case notice, ok := <-notices:
				if !ok {
					_ = conn.Close(websocket.StatusGoingAway, "notifier closed")
					return
				}
				writeCtx, writeCancel := context.WithTimeout(ctx, wsWriteTimeout)
				err := wsjson.Write(writeCtx, conn, notice)
				writeCancel()
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						d.Logger.Debug("report push failed", logger.Error(err))
					}
					return
				}
			}
		}
	}
}
