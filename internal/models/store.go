package models

// Store represents a restaurant storefront on a delivery platform
type Store struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Platform  string         `json:"platform"`
	Status    string         `json:"status"`
	Location  map[string]any `json:"location"`
	CreatedAt Timestamp      `json:"created_at"`
}

// StoreStatus constants
const (
	StoreStatusOnline  = "online"
	StoreStatusOffline = "offline"
	StoreStatusBusy    = "busy"
)

// StoreDashboard is the per-store dashboard response
type StoreDashboard struct {
	Store  any   `json:"store"`
	Orders []any `json:"orders"`
}

// FleetSummary is the fleet-wide dashboard response
type FleetSummary struct {
	Stores       []any `json:"stores"`
	TotalStores  int   `json:"totalStores"`
	TotalOrders  int   `json:"totalOrders"`
	TotalRevenue Money `json:"totalRevenue"`
}
