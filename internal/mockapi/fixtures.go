package mockapi

import (
	"math/rand"
	"strings"
	"time"

	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jaswdr/faker"
)

var errorTypes = []string{"store_closed", "item_unavailable", "payment_declined", "timeout"}

// generator builds fake stores and orders. It is not safe for concurrent use.
type generator struct {
	fake faker.Faker
	rng  *rand.Rand
}

func newGenerator(seed int64) *generator {
	return &generator{
		fake: faker.New(),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (g *generator) store(now time.Time) models.Store {
	name := g.fake.Company().Name()
	return models.Store{
		ID:       uuid.NewString(),
		Name:     name,
		Slug:     slugify(name),
		Platform: models.Platforms[g.rng.Intn(len(models.Platforms))],
		Status:   g.storeStatus(),
		Location: map[string]any{
			"address": g.fake.Address().StreetAddress(),
			"city":    g.fake.Address().City(),
			"state":   g.fake.Address().StateAbbr(),
			"zip":     g.fake.Address().PostCode(),
			"lat":     g.fake.Float64(6, 25, 48),
			"lng":     g.fake.Float64(6, -122, -71),
		},
		CreatedAt: models.Timestamp{Time: now.AddDate(0, 0, -g.fake.IntBetween(30, 720)).UTC()},
	}
}

func (g *generator) storeStatus() string {
	switch p := g.rng.Float64(); {
	case p < 0.8:
		return models.StoreStatusOnline
	case p < 0.9:
		return models.StoreStatusBusy
	default:
		return models.StoreStatusOffline
	}
}

func (g *generator) orderStatus() string {
	switch p := g.rng.Float64(); {
	case p < 0.8:
		return models.OrderStatusCompleted
	case p < 0.9:
		return models.OrderStatusFailed
	case p < 0.95:
		return models.OrderStatusCancelled
	default:
		return models.OrderStatusProcessing
	}
}

// order creates an order for store placed at created
func (g *generator) order(store models.Store, created time.Time) models.Order {
	itemCount := g.fake.IntBetween(1, 5)
	items := make([]models.OrderItem, itemCount)
	total := 0.0
	for i := range items {
		quantity := g.fake.IntBetween(1, 3)
		price := g.fake.Float64(2, 4, 28)
		items[i] = models.OrderItem{
			Name:     titleCase(g.fake.Lorem().Word()),
			Quantity: quantity,
			Price:    price,
			Total:    float64(quantity) * price,
		}
		total += items[i].Total
	}

	order := models.Order{
		ID:          uuid.NewString(),
		StoreID:     store.ID,
		Platform:    store.Platform,
		Status:      g.orderStatus(),
		TotalAmount: models.Amount(round2(total)),
		PlatformFee: models.Amount(round2(total * 0.15)),
		ItemsCount:  itemCount,
		Items:       items,
		Customer: map[string]any{
			"name": g.fake.Person().Name(),
		},
		Delivery: map[string]any{
			"type": []string{"delivery", "pickup"}[g.rng.Intn(2)],
		},
		CreatedAt: models.Timestamp{Time: created.UTC()},
	}

	switch order.Status {
	case models.OrderStatusCompleted:
		seconds := float64(g.fake.IntBetween(300, 2400))
		completed := models.Timestamp{Time: created.Add(time.Duration(seconds) * time.Second).UTC()}
		order.ProcessingTimeSeconds = &seconds
		order.CompletedAt = &completed
	case models.OrderStatusFailed:
		order.HasError = true
		order.ErrorType = errorTypes[g.rng.Intn(len(errorTypes))]
	}
	return order
}

// history creates count orders spread over the 24 hours before now, newest first
func (g *generator) history(store models.Store, count int, now time.Time) []models.Order {
	orders := make([]models.Order, count)
	for i := range orders {
		age := time.Duration(g.rng.Int63n(int64(24 * time.Hour)))
		orders[i] = g.order(store, now.Add(-age))
	}
	sortNewestFirst(orders)
	return orders
}

func sortNewestFirst(orders []models.Order) {
	for i := 1; i < len(orders); i++ {
		for j := i; j > 0 && orders[j].CreatedAt.After(orders[j-1].CreatedAt.Time); j-- {
			orders[j], orders[j-1] = orders[j-1], orders[j]
		}
	}
}

func slugify(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, base)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
