package woocommerce

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrder = `{
	"id": 727,
	"number": "727",
	"currency": "MXN",
	"date_paid": "2023-12-01T10:00:00",
	"billing": {"first_name": "Ana", "email": "ana@example.com"},
	"meta_data": [{"id": 1, "key": "_wc_order_attribution", "value": {"source": "direct"}}],
	"line_items": [
		{
			"id": 9,
			"name": "Tour Xcaret",
			"product_id": 41,
			"variation_id": 0,
			"sku": "",
			"total": "100.00",
			"meta_data": [
				{"id": 11, "key": "pa_adults", "value": "2", "display_key": "Adultos", "display_value": "2"}
			]
		},
		{"id": 10, "name": "Gift card"}
	]
}`

func TestOrder_UnmarshalKnownFields(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(sampleOrder), &o))

	assert.Equal(t, int64(727), o.ID)
	assert.Equal(t, StatusProcessing, o.EffectiveStatus())
	assert.True(t, o.IsPaid())
	require.Len(t, o.MetaData, 1)
	assert.JSONEq(t, `{"source":"direct"}`, o.MetaData[0].Value.String())

	require.Len(t, o.LineItems, 2)
	first := o.LineItems[0]
	require.NotNil(t, first.ProductID)
	assert.Equal(t, int64(41), *first.ProductID)
	assert.True(t, first.NeedsSKU())
	assert.Equal(t, "Adultos", first.MetaData[0].DisplayKey)
	assert.Equal(t, "2", first.MetaData[0].Value.String())

	second := o.LineItems[1]
	assert.Nil(t, second.SKU, "absent sku stays nil")
	assert.False(t, second.NeedsSKU())
}

func TestOrder_RoundTripPreservesUnknownFields(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(sampleOrder), &o))

	sku := "XC-01"
	vid := int64(55)
	o.LineItems[0].SKU = &sku
	o.LineItems[0].VariationID = &vid
	o.LineItems[0].MetaData = append(o.LineItems[0].MetaData, MetaData{
		Key:          "_adults",
		Value:        StringMetaValue("2"),
		DisplayKey:   "_adults",
		DisplayValue: StringMetaValue("2"),
	})

	out, err := json.Marshal(o)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Equal(t, "MXN", generic["currency"])
	assert.Equal(t, "727", generic["number"])
	assert.Equal(t, map[string]any{"first_name": "Ana", "email": "ana@example.com"}, generic["billing"])

	items := generic["line_items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "XC-01", first["sku"])
	assert.Equal(t, float64(55), first["variation_id"])
	assert.Equal(t, "100.00", first["total"])
	meta := first["meta_data"].([]any)
	require.Len(t, meta, 2)
	assert.Equal(t, map[string]any{"key": "_adults", "value": "2", "display_key": "_adults", "display_value": "2"}, meta[1])

	second := items[1].(map[string]any)
	_, hasSKU := second["sku"]
	assert.False(t, hasSKU, "absent fields are not invented")
	assert.Equal(t, "Gift card", second["name"])
}

func TestOrder_MetaDataPresence(t *testing.T) {
	var missing, empty, null Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1}`), &missing))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"meta_data":[]}`), &empty))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"meta_data":null}`), &null))

	assert.Nil(t, missing.MetaData)
	assert.NotNil(t, empty.MetaData)
	assert.Empty(t, empty.MetaData)
	assert.Nil(t, null.MetaData)
}

func TestOrder_UnmarshalRejectsWrongShapes(t *testing.T) {
	var o Order
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &o))
	assert.Error(t, json.Unmarshal([]byte(`null`), &o))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"abc"}`), &o))
}

func TestOrder_StatusAndPayment(t *testing.T) {
	empty := ""
	o := Order{Status: StatusCancelled, DatePaid: &empty}
	assert.Equal(t, StatusCancelled, o.EffectiveStatus())
	assert.False(t, o.IsPaid())
}

func TestMetaValue_String(t *testing.T) {
	assert.Equal(t, "25/12/2023", MetaValue(`"25/12/2023"`).String())
	assert.Equal(t, "3", MetaValue(`3`).String())
	assert.Equal(t, "", MetaValue(`null`).String())
	assert.Equal(t, "", MetaValue(nil).String())
	assert.Equal(t, "R123", StringMetaValue("R123").String())
}
