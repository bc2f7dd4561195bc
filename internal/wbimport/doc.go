// Package wbimport links products to their Wildberries cards from a seller's
// mapping export (CSV or XLSX).
//
// Header rows are recognized by column name in Russian or English; rows are
// matched to cached products by article number, falling back to barcode.
// Every write goes through the products hook, so the cached view is re-read
// after each update.
package wbimport
