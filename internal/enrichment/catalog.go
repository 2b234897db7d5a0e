package enrichment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
)

// Catalog is the read side of the storefront catalog API.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (*woocommerce.Product, error)
	GetVariation(ctx context.Context, productID, variationID int64) (*woocommerce.Variation, error)
}

// EnrichmentError reports which line item's catalog lookup failed.
type EnrichmentError struct {
	LineItem  int
	ProductID int64
	Err       error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich line item %d (product %d): %v", e.LineItem, e.ProductID, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// Enrich fills missing SKUs from the catalog and normalizes metadata for every
// line item concurrently. Each goroutine touches only its own line item. The
// first catalog failure cancels the rest and is returned.
func Enrich(ctx context.Context, catalog Catalog, order *woocommerce.Order) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range order.LineItems {
		i := i
		item := &order.LineItems[i]
		g.Go(func() error {
			if err := EnrichSKU(gctx, catalog, item); err != nil {
				var pid int64
				if item.ProductID != nil {
					pid = *item.ProductID
				}
				return &EnrichmentError{LineItem: i, ProductID: pid, Err: err}
			}
			NormalizeLineItem(gctx, item)
			return nil
		})
	}
	return g.Wait()
}

// EnrichSKU resolves the SKU of a line item that has a product but an empty SKU,
// using the product's first variation.
func EnrichSKU(ctx context.Context, catalog Catalog, item *woocommerce.LineItem) error {
	if !item.NeedsSKU() {
		return nil
	}
	productID := *item.ProductID

	product, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if len(product.Variations) == 0 {
		return nil
	}

	variationID := product.Variations[0]
	item.VariationID = &variationID

	variation, err := catalog.GetVariation(ctx, productID, variationID)
	if err != nil {
		return fmt.Errorf("get variation %d: %w", variationID, err)
	}
	if variation.HasSKU {
		sku := variation.SKU
		item.SKU = &sku
	}
	logging.FromContext(ctx).Debug("line item sku resolved",
		zap.Int64("product_id", productID),
		zap.Int64("variation_id", variationID),
		zap.Bool("sku_found", variation.HasSKU),
	)
	return nil
}
