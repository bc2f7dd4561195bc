package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/store"
)

const (
	demoCustomers = 24
	demoProducts  = 40
	demoOrders    = 80
	demoDays      = 120
)

var (
	demoSources   = []string{"Wildberries", "wb", "Ozon", "ozon", "site", "Avito", "phone"}
	demoStatuses  = []string{shop.StatusNew, shop.StatusProcessing, shop.StatusShipped, shop.StatusDelivered, shop.StatusDelivered, shop.StatusCancelled}
	demoSizes     = []string{"XS", "S", "M", "L", "XL"}
	demoCountries = []string{"Russia", "Kyrgyzstan", "Turkey", "China", "Uzbekistan"}
)

// seedDemo fills an empty store with a small, internally consistent shop:
// customer totals, sales periods and category revenue are derived from the
// generated orders, and stock movements end at each product's stock level.
// The same seed and now always produce the same data apart from record IDs.
func seedDemo(ctx context.Context, client store.Client, seed int64, now time.Time) error {
	faker := gofakeit.New(seed)
	start := now.AddDate(0, 0, -demoDays)

	customers := make([]shop.Customer, 0, demoCustomers)
	for range demoCustomers {
		c := shop.Customer{
			Name:      faker.Name(),
			Email:     faker.Email(),
			Phone:     faker.Phone(),
			City:      faker.City(),
			CreatedAt: shop.Timestamp(faker.DateRange(start, now)),
		}
		if err := insert(ctx, client, shop.CollectionCustomers, &c); err != nil {
			return err
		}
		customers = append(customers, c)
	}

	products := make([]shop.Product, 0, demoProducts)
	for i := range demoProducts {
		price := money(faker.Price(490, 9900))
		p := shop.Product{
			Title:           faker.ProductName(),
			Description:     faker.ProductDescription(),
			Price:           price,
			Category:        faker.ProductCategory(),
			Rating:          math.Round(faker.Float64Range(3.5, 5)*10) / 10,
			Colors:          []string{faker.Color(), faker.Color()},
			Sizes:           demoSizes[:faker.Number(1, len(demoSizes))],
			CountryOfOrigin: faker.RandomString(demoCountries),
			IsNew:           i%7 == 0,
			IsBestseller:    i%9 == 0,
			ArticleNumber:   fmt.Sprintf("SR-%04d", i+1),
			Barcode:         faker.Numerify("460#########") + "0",
			StockQuantity:   faker.Number(0, 60),
			Status:          shop.ProductActive,
			CreatedAt:       shop.Timestamp(faker.DateRange(start, now)),
		}
		switch {
		case i%10 == 9:
			p.Status = shop.ProductDraft
		case i%13 == 12:
			p.Status = shop.ProductArchived
		}
		if faker.Number(0, 4) > 0 {
			p.DiscountPrice = money(price * 0.85)
		}
		if i%3 != 2 {
			p.WildberriesURL = fmt.Sprintf("https://www.wildberries.ru/catalog/%d/detail.aspx", 100000000+i*7919)
		}
		if i%4 == 0 {
			p.OzonURL = fmt.Sprintf("https://www.ozon.ru/product/sr-%04d/", i+1)
		}
		p.InStock = p.StockQuantity > 0
		if err := insert(ctx, client, shop.CollectionProducts, &p); err != nil {
			return err
		}
		products = append(products, p)
	}

	type period struct {
		revenue float64
		orders  int
	}
	periods := map[string]*period{}
	var periodOrder []string
	categoryRevenue := map[string]float64{}
	spent := make([]float64, len(customers))
	counts := make([]int, len(customers))

	for range demoOrders {
		ci := faker.Number(0, len(customers)-1)
		product := products[faker.Number(0, len(products)-1)]
		items := faker.Number(1, 4)
		created := faker.DateRange(start, now)
		o := shop.Order{
			CustomerID:   customers[ci].ID,
			CustomerName: customers[ci].Name,
			Source:       faker.RandomString(demoSources),
			Status:       faker.RandomString(demoStatuses),
			Total:        money(product.Price * float64(items)),
			ItemsCount:   items,
			CreatedAt:    shop.Timestamp(created),
			UpdatedAt:    shop.Timestamp(created),
		}
		if err := insert(ctx, client, shop.CollectionOrders, &o); err != nil {
			return err
		}
		if err := seedStatusHistory(ctx, client, o, created); err != nil {
			return err
		}
		if o.Status == shop.StatusCancelled {
			continue
		}

		key := created.UTC().Format("2006-01")
		p, ok := periods[key]
		if !ok {
			p = &period{}
			periods[key] = p
			periodOrder = append(periodOrder, key)
		}
		p.revenue += o.Total
		p.orders++
		categoryRevenue[product.Category] += o.Total
		spent[ci] += o.Total
		counts[ci]++
	}

	for i, c := range customers {
		if counts[i] == 0 {
			continue
		}
		patch := store.Record{"orders_count": counts[i], "total_spent": money(spent[i])}
		if _, err := client.Update(ctx, shop.CollectionCustomers, c.ID, patch); err != nil {
			return fmt.Errorf("update demo customer: %w", err)
		}
	}

	for _, key := range periodOrder {
		p := periods[key]
		row := shop.SalesData{Period: key, Revenue: money(p.revenue), Orders: p.orders}
		if err := insert(ctx, client, shop.CollectionSalesData, &row); err != nil {
			return err
		}
	}

	perCategory := map[string]int{}
	var categories []string
	for _, p := range products {
		if perCategory[p.Category] == 0 {
			categories = append(categories, p.Category)
		}
		perCategory[p.Category]++
	}
	for _, name := range categories {
		row := shop.CategoryData{Category: name, Revenue: money(categoryRevenue[name]), Products: perCategory[name]}
		if err := insert(ctx, client, shop.CollectionCategoryData, &row); err != nil {
			return err
		}
	}

	for _, p := range products {
		if err := seedMovements(ctx, client, faker, p, now); err != nil {
			return err
		}
	}
	return nil
}

// seedStatusHistory records the transitions that led to the order's status.
func seedStatusHistory(ctx context.Context, client store.Client, o shop.Order, created time.Time) error {
	steps := []string{shop.StatusNew}
	if o.Status == shop.StatusCancelled {
		steps = append(steps, shop.StatusCancelled)
	} else {
		for status := shop.StatusNew; status != o.Status; {
			next, ok := shop.NextStatus(status)
			if !ok {
				break
			}
			steps = append(steps, next)
			status = next
		}
	}
	for i, status := range steps {
		h := shop.OrderStatusHistory{
			OrderID:   o.ID,
			Status:    status,
			ChangedAt: shop.Timestamp(created.Add(time.Duration(i*6) * time.Hour)),
		}
		if i == 0 {
			h.Comment = "order placed"
		}
		if err := insert(ctx, client, shop.CollectionOrderStatusHistory, &h); err != nil {
			return err
		}
	}
	return nil
}

// seedMovements writes a receipt and, for some products, a sale so that the
// last movement's quantity_after equals the product's stock.
func seedMovements(ctx context.Context, client store.Client, faker *gofakeit.Faker, p shop.Product, now time.Time) error {
	received := shop.ParseTime(p.CreatedAt)
	sold := 0
	if faker.Bool() {
		sold = faker.Number(1, 12)
	}
	receipt := shop.InventoryHistory{
		ProductID:     p.ID,
		ProductTitle:  p.Title,
		Change:        p.StockQuantity + sold,
		QuantityAfter: p.StockQuantity + sold,
		Reason:        "initial stock",
		CreatedAt:     shop.Timestamp(received),
	}
	if receipt.Change == 0 {
		return nil
	}
	if err := insert(ctx, client, shop.CollectionInventoryHistory, &receipt); err != nil {
		return err
	}
	if sold == 0 {
		return nil
	}
	sale := shop.InventoryHistory{
		ProductID:     p.ID,
		ProductTitle:  p.Title,
		Change:        -sold,
		QuantityAfter: p.StockQuantity,
		Reason:        "marketplace shipment",
		CreatedAt:     shop.Timestamp(faker.DateRange(received, now)),
	}
	return insert(ctx, client, shop.CollectionInventoryHistory, &sale)
}

// insert stores v and decodes the stored row (with its generated id) back
// into v.
func insert[T any](ctx context.Context, client store.Client, collection string, v *T) error {
	rec, err := store.Encode(*v)
	if err != nil {
		return err
	}
	stored, err := client.Insert(ctx, collection, rec)
	if err != nil {
		return fmt.Errorf("insert demo %s: %w", collection, err)
	}
	decoded, err := store.Decode[T](stored)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func money(v float64) float64 {
	return math.Round(v*100) / 100
}
