package model

// Entities are the record collections of the data store. The names double
// as table names and change-notification topics.
const (
	EntityItems     = "inventory_items"
	EntityMovements = "stock_movements"
	EntityRequests  = "requests"
	EntityUsers     = "users"
)
