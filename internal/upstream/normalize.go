package upstream

import (
	"encoding/json"
	"strings"
)

// NormalizeOrders turns an order-list response into a slice. Both a bare
// list and an {"orders": [...]} envelope are accepted; any other shape
// yields an empty slice.
func NormalizeOrders(body any) []any {
	return unwrapList(body, "orders")
}

// NormalizeStores turns a store-list response into a slice. Both a bare list
// and a {"stores": [...]} envelope are accepted; any other shape yields an
// empty slice.
func NormalizeStores(body any) []any {
	return unwrapList(body, "stores")
}

func unwrapList(body any, key string) []any {
	switch v := body.(type) {
	case []any:
		return v
	case map[string]any:
		if list, ok := v[key].([]any); ok {
			return list
		}
	}
	return []any{}
}

// StoreID returns the identifier of a raw store record. Records without an
// id, or with an empty or non-scalar one, report false.
func StoreID(store any) (string, bool) {
	fields, ok := store.(map[string]any)
	if !ok {
		return "", false
	}
	switch id := fields["id"].(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case json.Number:
		return id.String(), id.String() != "0"
	default:
		return "", false
	}
}
