package wbimport

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/state"
	"github.com/five82/stockroom/internal/store"
)

const catalogURL = "https://www.wildberries.ru/catalog/%s/detail.aspx"

// CatalogURL returns the Wildberries product card URL for an nmID.
func CatalogURL(nmID string) string {
	return fmt.Sprintf(catalogURL, nmID)
}

// Products is the part of the products hook the importer needs.
type Products interface {
	View() state.View[shop.Product]
	Update(ctx context.Context, id string, patch store.Record) (shop.Product, error)
}

// Logger receives one line per failed update.
type Logger interface {
	Printf(format string, args ...any)
}

// RowError is a mapping row that could not be applied.
type RowError struct {
	Row     int
	Article string
	Err     error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Article, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Report summarizes an import.
type Report struct {
	Rows    int
	Matched int
	Updated int
	// Unchanged counts matched rows whose product already carried the mapping.
	Unchanged int
	Unmatched []string
	Failed    []RowError
	DryRun    bool
}

// Importer applies Wildberries mappings to products.
type Importer struct {
	products Products
	logger   Logger
}

func NewImporter(products Products, logger Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{products: products, logger: logger}
}

// Apply matches each mapping to a cached product by article number, falling
// back to barcode, and writes article, barcode and catalog URL. With dryRun
// nothing is written.
func (im *Importer) Apply(ctx context.Context, mappings []Mapping, dryRun bool) (Report, error) {
	report := Report{Rows: len(mappings), DryRun: dryRun}
	products := im.products.View().Items

	byArticle := make(map[string]shop.Product, len(products))
	byBarcode := make(map[string]shop.Product, len(products))
	for _, p := range products {
		if key := matchKey(p.ArticleNumber); key != "" {
			byArticle[key] = p
		}
		if key := matchKey(p.Barcode); key != "" {
			byBarcode[key] = p
		}
	}

	for _, m := range mappings {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if m.Article == "" && m.Barcode == "" {
			report.Failed = append(report.Failed, RowError{Row: m.Row, Err: fmt.Errorf("no article or barcode")})
			continue
		}
		if m.NmID != "" && !isDigits(m.NmID) {
			report.Failed = append(report.Failed, RowError{Row: m.Row, Article: m.Article, Err: fmt.Errorf("nmID %q is not numeric", m.NmID)})
			continue
		}

		product, ok := byArticle[matchKey(m.Article)]
		if !ok {
			product, ok = byBarcode[matchKey(m.Barcode)]
		}
		if !ok {
			report.Unmatched = append(report.Unmatched, label(m))
			continue
		}
		report.Matched++

		patch := patchFor(product, m)
		if len(patch) == 0 {
			report.Unchanged++
			continue
		}
		if dryRun {
			report.Updated++
			continue
		}
		if _, err := im.products.Update(ctx, product.ID, patch); err != nil {
			im.logger.Printf("wb import row %d: update product %s failed: %v", m.Row, product.ID, err)
			report.Failed = append(report.Failed, RowError{Row: m.Row, Article: m.Article, Err: err})
			continue
		}
		report.Updated++
	}
	return report, nil
}

func patchFor(p shop.Product, m Mapping) store.Record {
	patch := store.Record{}
	if m.Article != "" && m.Article != p.ArticleNumber {
		patch["article_number"] = m.Article
	}
	if m.Barcode != "" && m.Barcode != p.Barcode {
		patch["barcode"] = m.Barcode
	}
	if m.NmID != "" {
		if u := CatalogURL(m.NmID); u != p.WildberriesURL {
			patch["wildberries_url"] = u
		}
	}
	return patch
}

func label(m Mapping) string {
	if m.Article != "" {
		return m.Article
	}
	return m.Barcode
}

func matchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
