// Package mockapi serves a local stand-in for the external store API,
// with generated stores, order history, a live order stream and chaos toggles.
package mockapi

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ashendes/store-dashboard/internal/metrics"
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultStores         = 12
	DefaultOrdersPerStore = 40
	DefaultStreamInterval = 3 * time.Second
	DefaultFailureRate    = 0.3

	maxOrdersPerStore = 500
)

var errChaosFailure = errors.New("chaos: simulated failure")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamMessage is one frame of the order stream
type StreamMessage struct {
	Type string       `json:"type"`
	Data models.Order `json:"data"`
}

// Server holds the in-memory store catalogue and chaos settings
type Server struct {
	service        string
	storeCount     int
	ordersPerStore int
	streamInterval time.Duration
	failureRate    float64
	seed           int64
	now            func() time.Time

	mutex  sync.RWMutex
	stores []models.Store
	orders map[string][]models.Order

	genMutex sync.Mutex
	gen      *generator

	chaosMutex    sync.RWMutex
	chaosEnabled  bool
	chaosSlowMode bool
	slowMin       time.Duration
	slowMax       time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithStores sets how many stores are generated
func WithStores(n int) Option {
	return func(s *Server) { s.storeCount = n }
}

// WithOrdersPerStore sets the size of each store's generated order history
func WithOrdersPerStore(n int) Option {
	return func(s *Server) { s.ordersPerStore = n }
}

// WithStreamInterval sets how often the order stream emits a new order
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) { s.streamInterval = d }
}

// WithFailureRate sets the share of requests failed while chaos mode is on
func WithFailureRate(p float64) Option {
	return func(s *Server) { s.failureRate = p }
}

// WithSlowDelay sets the delay range applied while slow mode is on
func WithSlowDelay(lo, hi time.Duration) Option {
	return func(s *Server) {
		s.slowMin = lo
		s.slowMax = hi
	}
}

// WithSeed makes the generated catalogue shape reproducible
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = seed }
}

// WithServiceName sets the service label used in metrics
func WithServiceName(name string) Option {
	return func(s *Server) { s.service = name }
}

// NewServer generates the store catalogue and returns a ready server
func NewServer(opts ...Option) *Server {
	s := &Server{
		service:        "mock-upstream",
		storeCount:     DefaultStores,
		ordersPerStore: DefaultOrdersPerStore,
		streamInterval: DefaultStreamInterval,
		failureRate:    DefaultFailureRate,
		seed:           time.Now().UnixNano(),
		now:            time.Now,
		orders:         make(map[string][]models.Order),
		slowMin:        2 * time.Second,
		slowMax:        5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.slowMax < s.slowMin {
		s.slowMax = s.slowMin
	}

	s.gen = newGenerator(s.seed)
	now := s.now()
	for i := 0; i < s.storeCount; i++ {
		store := s.gen.store(now)
		s.stores = append(s.stores, store)
		s.orders[store.ID] = s.gen.history(store, s.ordersPerStore, now)
	}

	metrics.ChaosFailureRate.WithLabelValues(s.service).Set(0)
	metrics.ChaosSlowMode.WithLabelValues(s.service).Set(0)

	log.WithFields(log.Fields{
		"stores":           len(s.stores),
		"orders_per_store": s.ordersPerStore,
	}).Info("Mock upstream catalogue generated")
	return s
}

// Router builds a gin engine serving the upstream API
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.PrometheusMiddleware(s.service))
	s.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// Register adds the upstream routes to r
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/api/stores", s.listStores)
	r.GET("/api/stores/:store_id", s.getStore)
	r.GET("/api/stores/:store_id/orders", s.getStoreOrders)
	r.GET("/ws/orders", s.streamOrders)

	r.GET("/chaos/status", s.getStatus)
	r.POST("/chaos/enable", s.enableChaos)
	r.POST("/chaos/disable", s.disableChaos)
	r.POST("/chaos/slow", s.enableSlowMode)
	r.POST("/chaos/slow/disable", s.disableSlowMode)
}

// Stores returns a copy of the generated catalogue
func (s *Server) Stores() []models.Store {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]models.Store(nil), s.stores...)
}

// Orders returns a copy of a store's order history, newest first
func (s *Server) Orders(storeID string) []models.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]models.Order(nil), s.orders[storeID]...)
}

func (s *Server) listStores(c *gin.Context) {
	if s.failIfChaos(c) {
		return
	}
	stores := s.Stores()
	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"total":  len(stores),
	})
}

func (s *Server) getStore(c *gin.Context) {
	if s.failIfChaos(c) {
		return
	}
	store, ok := s.findStore(c.Param("store_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	c.JSON(http.StatusOK, store)
}

func (s *Server) getStoreOrders(c *gin.Context) {
	storeID := c.Param("store_id")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	if s.failIfChaos(c) {
		return
	}
	if _, ok := s.findStore(storeID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	orders := s.Orders(storeID)
	total := len(orders)
	if limit > 0 && limit < len(orders) {
		orders = orders[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
	})
}

func (s *Server) findStore(id string) (models.Store, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, store := range s.stores {
		if store.ID == id {
			return store, true
		}
	}
	return models.Store{}, false
}

// newOrder generates an order for a random store and records it
func (s *Server) newOrder() (models.Order, bool) {
	s.genMutex.Lock()
	defer s.genMutex.Unlock()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.stores) == 0 {
		return models.Order{}, false
	}

	store := s.stores[s.gen.rng.Intn(len(s.stores))]
	order := s.gen.order(store, s.now())

	history := append([]models.Order{order}, s.orders[store.ID]...)
	if len(history) > maxOrdersPerStore {
		history = history[:maxOrdersPerStore]
	}
	s.orders[store.ID] = history
	return order, true
}

func (s *Server) streamOrders(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Order stream upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// the client only ever closes; reading surfaces that
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			order, ok := s.newOrder()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(StreamMessage{Type: "new_order", Data: order}); err != nil {
				log.WithError(err).Debug("Order stream client went away")
				return
			}
		}
	}
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":         s.service,
		"status":          "healthy",
		"stores":          len(s.Stores()),
		"chaos_enabled":   s.getChaosEnabled(),
		"chaos_slow_mode": s.getSlowMode(),
		"timestamp":       s.now().Format(time.RFC3339),
	})
}

func (s *Server) enableChaos(c *gin.Context) {
	s.setChaosEnabled(true)
	metrics.ChaosFailureRate.WithLabelValues(s.service).Set(1)

	log.Info("Chaos mode ENABLED for mock upstream")
	c.JSON(http.StatusOK, gin.H{
		"message": "Chaos mode enabled",
		"info":    strconv.Itoa(int(s.failureRate*100)) + "% of requests will fail randomly",
	})
}

func (s *Server) disableChaos(c *gin.Context) {
	s.setChaosEnabled(false)
	s.setSlowMode(false)
	metrics.ChaosFailureRate.WithLabelValues(s.service).Set(0)
	metrics.ChaosSlowMode.WithLabelValues(s.service).Set(0)

	log.Info("Chaos mode DISABLED for mock upstream")
	c.JSON(http.StatusOK, gin.H{"message": "Chaos mode disabled"})
}

func (s *Server) enableSlowMode(c *gin.Context) {
	s.setSlowMode(true)
	metrics.ChaosSlowMode.WithLabelValues(s.service).Set(1)

	log.Info("Slow mode ENABLED for mock upstream")
	c.JSON(http.StatusOK, gin.H{
		"message": "Slow mode enabled",
		"info":    "Requests will be delayed between " + s.slowMin.String() + " and " + s.slowMax.String(),
	})
}

func (s *Server) disableSlowMode(c *gin.Context) {
	s.setSlowMode(false)
	metrics.ChaosSlowMode.WithLabelValues(s.service).Set(0)

	log.Info("Slow mode DISABLED for mock upstream")
	c.JSON(http.StatusOK, gin.H{"message": "Slow mode disabled"})
}

func (s *Server) setChaosEnabled(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosEnabled = enabled
}

func (s *Server) getChaosEnabled() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosEnabled
}

func (s *Server) setSlowMode(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosSlowMode = enabled
}

func (s *Server) getSlowMode() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosSlowMode
}

// failIfChaos applies slow and failure modes, writing a 503 when the request
// was chosen to fail
func (s *Server) failIfChaos(c *gin.Context) bool {
	err := s.simulateChaos(c.Request.Context())
	if err == nil {
		return false
	}
	log.WithField("path", c.Request.URL.Path).Warn("Chaos: Simulated failure")
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   "Service temporarily unavailable",
		"message": err.Error(),
	})
	return true
}

func (s *Server) simulateChaos(ctx context.Context) error {
	if s.getSlowMode() {
		delay := s.slowMin
		if spread := s.slowMax - s.slowMin; spread > 0 {
			delay += time.Duration(rand.Int63n(int64(spread)))
		}
		log.WithField("delay_ms", delay.Milliseconds()).Debug("Chaos: Simulating slow response")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	if s.getChaosEnabled() && rand.Float64() < s.failureRate {
		return errChaosFailure
	}
	return nil
}
