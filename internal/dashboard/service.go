package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ashendes/store-dashboard/internal/metrics"
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/ashendes/store-dashboard/internal/upstream"
	log "github.com/sirupsen/logrus"
)

// StoreAPI is the subset of the upstream client the dashboard needs
type StoreAPI interface {
	ListStores(ctx context.Context) ([]any, error)
	GetStore(ctx context.Context, storeID string) (any, error)
	GetStoreOrders(ctx context.Context, storeID string) ([]any, error)
}

// Service builds dashboard views out of upstream store and order data
type Service struct {
	api         StoreAPI
	fanOutLimit int
	fanOutWait  time.Duration
	serviceName string
	now         func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithFanOutLimit caps simultaneous per-store order fetches
func WithFanOutLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanOutLimit = n
		}
	}
}

// WithFanOutMaxWait skips a store whose fetch cannot be admitted within d.
// Zero waits for as long as the request lasts.
func WithFanOutMaxWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fanOutWait = d
		}
	}
}

// WithServiceName sets the service label used on metrics
func WithServiceName(name string) Option {
	return func(s *Service) {
		s.serviceName = name
	}
}

// WithClock overrides the time source used for metric windows
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a dashboard service backed by api
func NewService(api StoreAPI, opts ...Option) *Service {
	s := &Service{
		api:         api,
		fanOutLimit: patterns.DefaultFanOutLimit,
		serviceName: "dashboard-service",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreDashboard fetches one store and its orders
func (s *Service) StoreDashboard(ctx context.Context, storeID string) (models.StoreDashboard, error) {
	store, err := s.api.GetStore(ctx, storeID)
	if err != nil {
		return models.StoreDashboard{}, fmt.Errorf("fetch store %s: %w", storeID, err)
	}

	orders, err := s.api.GetStoreOrders(ctx, storeID)
	if err != nil {
		return models.StoreDashboard{}, fmt.Errorf("fetch orders for store %s: %w", storeID, err)
	}

	return models.StoreDashboard{
		Store:  store,
		Orders: orders,
	}, nil
}

// Summary aggregates order counts and revenue across the whole fleet. Only a
// failure to list stores fails the summary; a store whose orders cannot be
// fetched contributes nothing.
func (s *Service) Summary(ctx context.Context) (models.FleetSummary, error) {
	stores, err := s.api.ListStores(ctx)
	if err != nil {
		return models.FleetSummary{}, fmt.Errorf("list stores: %w", err)
	}

	orderLists := s.fleetOrders(ctx, stores)

	totalOrders := 0
	for _, orders := range orderLists {
		totalOrders += len(orders)
	}
	metrics.OrdersAggregated.Add(float64(totalOrders))

	return models.FleetSummary{
		Stores:       stores,
		TotalStores:  len(stores),
		TotalOrders:  totalOrders,
		TotalRevenue: SumRevenue(orderLists...),
	}, nil
}

// fleetOrders returns one order list per store, aligned with stores. Stores
// without an id get an empty list without a fetch; failed fetches yield nil.
func (s *Service) fleetOrders(ctx context.Context, stores []any) [][]any {
	orderLists := make([][]any, len(stores))

	var ids []string
	var positions []int
	for i, store := range stores {
		id, ok := upstream.StoreID(store)
		if !ok {
			orderLists[i] = []any{}
			continue
		}
		ids = append(ids, id)
		positions = append(positions, i)
	}

	gate := s.newGate("store-orders")
	results, _ := patterns.FanOut(ctx, gate, ids, patterns.SkipFailures, s.api.GetStoreOrders)

	for j, result := range results {
		if result.Err != nil {
			metrics.FanOutItemFailures.WithLabelValues(s.serviceName, gate.GetName()).Inc()
			log.WithFields(log.Fields{
				"store_id": ids[j],
				"gate":     gate.GetName(),
			}).WithError(result.Err).Warn("Skipping store whose orders could not be fetched")
			continue
		}
		orderLists[positions[j]] = result.Value
	}
	return orderLists
}

// StoreSnapshot is a store's decoded order history with derived metrics
type StoreSnapshot struct {
	StoreID string
	Orders  []models.Order
	Metrics models.StoreMetrics
}

// Snapshot fetches a store's orders and computes its metrics
func (s *Service) Snapshot(ctx context.Context, storeID string) (StoreSnapshot, error) {
	raw, err := s.api.GetStoreOrders(ctx, storeID)
	if err != nil {
		return StoreSnapshot{}, fmt.Errorf("fetch orders for store %s: %w", storeID, err)
	}
	orders := DecodeOrders(raw)
	return StoreSnapshot{
		StoreID: storeID,
		Orders:  orders,
		Metrics: ComputeStoreMetrics(storeID, orders, s.now()),
	}, nil
}

// FleetSnapshots builds a snapshot for every store with an id. Stores whose
// orders cannot be fetched are left out.
func (s *Service) FleetSnapshots(ctx context.Context) ([]StoreSnapshot, error) {
	stores, err := s.api.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	ids := make([]string, 0, len(stores))
	for _, store := range stores {
		if id, ok := upstream.StoreID(store); ok {
			ids = append(ids, id)
		}
	}

	gate := s.newGate("store-snapshots")
	results, _ := patterns.FanOut(ctx, gate, ids, patterns.SkipFailures, s.Snapshot)

	snapshots := make([]StoreSnapshot, 0, len(results))
	for j, result := range results {
		if result.Err != nil {
			metrics.FanOutItemFailures.WithLabelValues(s.serviceName, gate.GetName()).Inc()
			log.WithFields(log.Fields{
				"store_id": ids[j],
				"gate":     gate.GetName(),
			}).WithError(result.Err).Warn("Skipping store snapshot")
			continue
		}
		snapshots = append(snapshots, result.Value)
	}
	return snapshots, nil
}

func (s *Service) newGate(name string) *patterns.Bulkhead {
	var opts []patterns.BulkheadOption
	if s.fanOutWait > 0 {
		opts = append(opts, patterns.WithMaxWait(s.fanOutWait))
	}
	return patterns.NewBulkhead(s.fanOutLimit, name, s.serviceName, opts...)
}
