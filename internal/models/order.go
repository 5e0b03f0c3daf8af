package models

import "encoding/json"

// OrderItem represents a line item of an upstream order
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Order represents a delivery-platform order as served by the upstream API
type Order struct {
	ID                    string         `json:"id"`
	StoreID               string         `json:"store_id"`
	Platform              string         `json:"platform"`
	Status                string         `json:"status"`
	TotalAmount           Amount         `json:"total_amount"`
	PlatformFee           Amount         `json:"platform_fee"`
	ItemsCount            int            `json:"items_count"`
	Items                 []OrderItem    `json:"items,omitempty"`
	Customer              map[string]any `json:"customer,omitempty"`
	Delivery              map[string]any `json:"delivery,omitempty"`
	HasError              bool           `json:"has_error"`
	ErrorType             string         `json:"error_type,omitempty"`
	CreatedAt             Timestamp      `json:"created_at"`
	CompletedAt           *Timestamp     `json:"completed_at,omitempty"`
	ProcessingTimeSeconds *float64       `json:"processing_time_seconds,omitempty"`
}

// OrderStatus constants
const (
	OrderStatusCompleted  = "completed"
	OrderStatusFailed     = "failed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusProcessing = "processing"
)

// Platform constants
const (
	PlatformDoorDash = "doordash"
	PlatformUberEats = "ubereats"
	PlatformGrubhub  = "grubhub"
)

// Platforms lists every delivery platform the dashboard knows about
var Platforms = []string{PlatformDoorDash, PlatformUberEats, PlatformGrubhub}

// IsCompleted reports whether the order finished successfully
func (o Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// UnmarshalJSON decodes field by field: a malformed field is left at its
// zero value instead of rejecting the whole order
func (o *Order) UnmarshalJSON(data []byte) error {
	type Alias Order
	aux := struct {
		*Alias
		ID                    looseString     `json:"id"`
		StoreID               looseString     `json:"store_id"`
		Platform              looseString     `json:"platform"`
		Status                looseString     `json:"status"`
		ItemsCount            looseNumber     `json:"items_count"`
		Items                 json.RawMessage `json:"items"`
		Customer              json.RawMessage `json:"customer"`
		Delivery              json.RawMessage `json:"delivery"`
		HasError              looseBool       `json:"has_error"`
		ErrorType             looseString     `json:"error_type"`
		CreatedAt             looseTimestamp  `json:"created_at"`
		CompletedAt           looseTimestamp  `json:"completed_at"`
		ProcessingTimeSeconds looseNumber     `json:"processing_time_seconds"`
	}{Alias: (*Alias)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.ID = string(aux.ID)
	o.StoreID = string(aux.StoreID)
	o.Platform = string(aux.Platform)
	o.Status = string(aux.Status)
	o.ItemsCount = aux.ItemsCount.int()
	o.HasError = bool(aux.HasError)
	o.ErrorType = string(aux.ErrorType)
	o.CreatedAt = aux.CreatedAt.Timestamp
	o.ProcessingTimeSeconds = aux.ProcessingTimeSeconds.value

	o.CompletedAt = nil
	if !aux.CompletedAt.IsZero() {
		completed := aux.CompletedAt.Timestamp
		o.CompletedAt = &completed
	}

	o.Items = nil
	if len(aux.Items) > 0 {
		var items []OrderItem
		if json.Unmarshal(aux.Items, &items) == nil {
			o.Items = items
		}
	}
	o.Customer = decodeObject(aux.Customer)
	o.Delivery = decodeObject(aux.Delivery)
	return nil
}

func decodeObject(data json.RawMessage) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var fields map[string]any
	if json.Unmarshal(data, &fields) != nil {
		return nil
	}
	return fields
}
