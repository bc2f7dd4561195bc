// Package shop defines the shop's domain records as they are stored in the
// remote record store: customers, orders, products, inventory movements,
// order status transitions and the sales/category aggregates.
//
// The types are plain transport structs with snake_case JSON tags matching the
// store's column names. Conversion to and from store records goes through
// store.Encode and store.Decode.
package shop
