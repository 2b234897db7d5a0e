package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
)

type fakeCatalog struct {
	mu         sync.Mutex
	products   map[int64]*woocommerce.Product
	variations map[int64]*woocommerce.Variation
	failOn     int64
	calls      []string
}

func (f *fakeCatalog) GetProduct(ctx context.Context, productID int64) (*woocommerce.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "product")
	if productID == f.failOn {
		return nil, errors.New("catalog unavailable")
	}
	p, ok := f.products[productID]
	if !ok {
		return &woocommerce.Product{ID: productID}, nil
	}
	return p, nil
}

func (f *fakeCatalog) GetVariation(ctx context.Context, productID, variationID int64) (*woocommerce.Variation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "variation")
	v, ok := f.variations[variationID]
	if !ok {
		return &woocommerce.Variation{ID: variationID}, nil
	}
	return v, nil
}

func ptr[T any](v T) *T { return &v }

func TestEnrichSKU_UsesFirstVariation(t *testing.T) {
	cat := &fakeCatalog{
		products:   map[int64]*woocommerce.Product{41: {ID: 41, Variations: []int64{55, 56}}},
		variations: map[int64]*woocommerce.Variation{55: {ID: 55, SKU: "XC-01", HasSKU: true}, 56: {ID: 56, SKU: "XC-02", HasSKU: true}},
	}
	item := &woocommerce.LineItem{ProductID: ptr(int64(41)), SKU: ptr("")}

	require.NoError(t, EnrichSKU(context.Background(), cat, item))

	assert.Equal(t, int64(55), *item.VariationID)
	assert.Equal(t, "XC-01", *item.SKU)
}

func TestEnrichSKU_Skips(t *testing.T) {
	cat := &fakeCatalog{}
	cases := map[string]*woocommerce.LineItem{
		"sku present": {ProductID: ptr(int64(41)), SKU: ptr("ABC")},
		"sku absent":  {ProductID: ptr(int64(41))},
		"no product":  {SKU: ptr("")},
	}
	for name, item := range cases {
		require.NoError(t, EnrichSKU(context.Background(), cat, item), name)
	}
	assert.Empty(t, cat.calls)
}

func TestEnrichSKU_NoVariationsOrNoSKUKey(t *testing.T) {
	cat := &fakeCatalog{
		products: map[int64]*woocommerce.Product{
			1: {ID: 1},
			2: {ID: 2, Variations: []int64{20}},
		},
		variations: map[int64]*woocommerce.Variation{20: {ID: 20}},
	}

	simple := &woocommerce.LineItem{ProductID: ptr(int64(1)), SKU: ptr("")}
	require.NoError(t, EnrichSKU(context.Background(), cat, simple))
	assert.Nil(t, simple.VariationID)
	assert.Equal(t, "", *simple.SKU)

	noKey := &woocommerce.LineItem{ProductID: ptr(int64(2)), SKU: ptr("")}
	require.NoError(t, EnrichSKU(context.Background(), cat, noKey))
	assert.Equal(t, int64(20), *noKey.VariationID)
	assert.Equal(t, "", *noKey.SKU)
}

func TestEnrich_AllLineItems(t *testing.T) {
	cat := &fakeCatalog{
		products:   map[int64]*woocommerce.Product{41: {ID: 41, Variations: []int64{55}}},
		variations: map[int64]*woocommerce.Variation{55: {ID: 55, SKU: "XC-01", HasSKU: true}},
	}
	order := &woocommerce.Order{ID: 1, LineItems: []woocommerce.LineItem{
		{ProductID: ptr(int64(41)), SKU: ptr(""), MetaData: []woocommerce.MetaData{labelled("Adults", "2")}},
		{ProductID: ptr(int64(42)), SKU: ptr("KEEP"), MetaData: []woocommerce.MetaData{labelled("Children", "1")}},
	}}

	require.NoError(t, Enrich(context.Background(), cat, order))

	assert.Equal(t, "XC-01", *order.LineItems[0].SKU)
	assert.Equal(t, "KEEP", *order.LineItems[1].SKU)
	assert.Len(t, byKey(order.LineItems[0].MetaData, KeyAdults), 1)
	assert.Len(t, byKey(order.LineItems[1].MetaData, KeyKids), 1)
}

func TestEnrich_FailureIsTyped(t *testing.T) {
	cat := &fakeCatalog{failOn: 77}
	order := &woocommerce.Order{ID: 1, LineItems: []woocommerce.LineItem{
		{ProductID: ptr(int64(10)), SKU: ptr("A")},
		{ProductID: ptr(int64(77)), SKU: ptr("")},
	}}

	err := Enrich(context.Background(), cat, order)

	var ee *EnrichmentError
	require.True(t, errors.As(err, &ee), "got %v", err)
	assert.Equal(t, 1, ee.LineItem)
	assert.Equal(t, int64(77), ee.ProductID)
	assert.Contains(t, ee.Error(), "catalog unavailable")
}
