package api

import (
	"net/http"
	"sync"

	"github.com/ashendes/store-dashboard/internal/metrics"
	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// OrderStream serves the real-time order websocket. Without an upstream URL
// it accepts clients and idles until they disconnect; with one it relays
// every upstream message to the client.
type OrderStream struct {
	upstreamURL string
	service     string
	dialer      *websocket.Dialer
}

// NewOrderStream creates an order stream, optionally relaying upstreamURL
func NewOrderStream(upstreamURL, service string) *OrderStream {
	return &OrderStream{
		upstreamURL: upstreamURL,
		service:     service,
		dialer:      websocket.DefaultDialer,
	}
}

// Handle upgrades the request and serves the client until it disconnects
func (s *OrderStream) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Order stream upgrade failed")
		return
	}
	defer conn.Close()

	metrics.OrderStreamClients.WithLabelValues(s.service).Inc()
	defer metrics.OrderStreamClients.WithLabelValues(s.service).Dec()

	var wg sync.WaitGroup
	upstreamConn := s.dialUpstream(c)
	if upstreamConn != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.relay(upstreamConn, conn)
		}()
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("Order stream client read failed")
			}
			break
		}
	}

	if upstreamConn != nil {
		upstreamConn.Close()
	}
	wg.Wait()
}

func (s *OrderStream) dialUpstream(c *gin.Context) *websocket.Conn {
	if s.upstreamURL == "" {
		return nil
	}
	ctx, cancel := patterns.WithTimeout(c.Request.Context(), patterns.DefaultDialTimeout)
	defer cancel()

	upstreamConn, _, err := s.dialer.DialContext(ctx, s.upstreamURL, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"upstream_url": s.upstreamURL,
		}).WithError(err).Warn("Order stream relay unavailable, serving idle stream")
		return nil
	}
	return upstreamConn
}

// relay copies upstream messages to the client until either side fails
func (s *OrderStream) relay(from, to *websocket.Conn) {
	for {
		messageType, payload, err := from.ReadMessage()
		if err != nil {
			_ = to.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "upstream order stream closed"))
			return
		}
		if err := to.WriteMessage(messageType, payload); err != nil {
			return
		}
	}
}
