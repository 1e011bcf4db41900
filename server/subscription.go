package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rostsocial/rost/server/middlewares"
	. "github.com/rostsocial/rost/utils/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already restricted by the cors middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscription upgrades to a websocket and streams the viewer's signals until
// either side closes. Browsers can't set headers on websockets, so the token
// usually comes in the "token" query param.
func (s *Server) Subscription(c *gin.Context) {
	viewerID := middlewares.ViewerID(c)
	if viewerID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code": ErrorUnauthenticated,
			"msg":  "sign in required",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied with an error.
		Log.Warnf("websocket upgrade failed for viewer %s: %v", viewerID, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	signals, chID := s.Resolver.SignalChans.AddNewConnection(ctx, viewerID)
	Log.Infof("viewer %s subscribed on %s", viewerID, chID)

	// Reading is only needed to process control frames and notice the peer
	// going away.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case signal := <-signals:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(signal); err != nil {
				Log.Debugf("write to %s failed: %v", chID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
