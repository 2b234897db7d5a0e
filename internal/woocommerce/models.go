package woocommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Order statuses the bridge cares about.
const (
	StatusProcessing = "processing"
	StatusCancelled  = "cancelled"
)

// ReservationIDKey is the order metadata key holding the reservation system's confirmation id.
const ReservationIDKey = "_reservation_id"

// Order is a WooCommerce order as delivered by the order.updated webhook.
// Fields the bridge does not model are kept and re-emitted unchanged.
type Order struct {
	ID        int64      `json:"id" validate:"required"`
	Status    string     `json:"status,omitempty"`
	DatePaid  *string    `json:"date_paid"`
	MetaData  []MetaData `json:"meta_data" validate:"required"`
	LineItems []LineItem `json:"line_items"`

	fields map[string]json.RawMessage
}

// EffectiveStatus returns the order status, defaulting to processing when absent.
func (o *Order) EffectiveStatus() string {
	if o.Status == "" {
		return StatusProcessing
	}
	return o.Status
}

// IsPaid reports whether date_paid is set to a non-empty value.
func (o *Order) IsPaid() bool {
	return o.DatePaid != nil && *o.DatePaid != ""
}

func (o *Order) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("order: %w", err)
	}
	*o = Order{fields: fields}
	if err := decodeField(fields, "id", &o.ID); err != nil {
		return err
	}
	if err := decodeField(fields, "status", &o.Status); err != nil {
		return err
	}
	if err := decodeField(fields, "date_paid", &o.DatePaid); err != nil {
		return err
	}
	if err := decodeField(fields, "meta_data", &o.MetaData); err != nil {
		return err
	}
	return decodeField(fields, "line_items", &o.LineItems)
}

func (o Order) MarshalJSON() ([]byte, error) {
	out := cloneFields(o.fields)
	if err := encodeField(out, "id", o.ID); err != nil {
		return nil, err
	}
	if o.Status != "" {
		if err := encodeField(out, "status", o.Status); err != nil {
			return nil, err
		}
	}
	if o.DatePaid != nil {
		if err := encodeField(out, "date_paid", o.DatePaid); err != nil {
			return nil, err
		}
	}
	if _, ok := out["meta_data"]; ok || o.MetaData != nil {
		if err := encodeField(out, "meta_data", o.MetaData); err != nil {
			return nil, err
		}
	}
	if _, ok := out["line_items"]; ok || o.LineItems != nil {
		if err := encodeField(out, "line_items", o.LineItems); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// LineItem is one order line. ProductID and SKU are pointers so that absent
// and empty can be told apart.
type LineItem struct {
	ID          int64      `json:"id,omitempty"`
	ProductID   *int64     `json:"product_id,omitempty"`
	VariationID *int64     `json:"variation_id,omitempty"`
	SKU         *string    `json:"sku,omitempty"`
	MetaData    []MetaData `json:"meta_data,omitempty"`

	fields map[string]json.RawMessage
}

// NeedsSKU reports whether the catalog should be consulted for this line.
func (li *LineItem) NeedsSKU() bool {
	return li.ProductID != nil && li.SKU != nil && *li.SKU == ""
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("line item: %w", err)
	}
	*li = LineItem{fields: fields}
	for key, dst := range map[string]any{
		"id":           &li.ID,
		"product_id":   &li.ProductID,
		"variation_id": &li.VariationID,
		"sku":          &li.SKU,
		"meta_data":    &li.MetaData,
	} {
		if err := decodeField(fields, key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	out := cloneFields(li.fields)
	if _, ok := out["id"]; ok || li.ID != 0 {
		if err := encodeField(out, "id", li.ID); err != nil {
			return nil, err
		}
	}
	for key, v := range map[string]any{
		"product_id":   li.ProductID,
		"variation_id": li.VariationID,
		"sku":          li.SKU,
	} {
		if err := encodeOptional(out, key, v); err != nil {
			return nil, err
		}
	}
	if _, ok := out["meta_data"]; ok || li.MetaData != nil {
		if err := encodeField(out, "meta_data", li.MetaData); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// MetaData is a WooCommerce metadata entry. Order-level entries carry only
// key and value; line-item entries also carry display_key and display_value.
type MetaData struct {
	ID           int64     `json:"id,omitempty"`
	Key          string    `json:"key"`
	Value        MetaValue `json:"value"`
	DisplayKey   string    `json:"display_key,omitempty"`
	DisplayValue MetaValue `json:"display_value,omitempty"`

	fields map[string]json.RawMessage
}

func (m *MetaData) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("meta_data: %w", err)
	}
	*m = MetaData{fields: fields}
	if err := decodeField(fields, "id", &m.ID); err != nil {
		return err
	}
	if err := decodeField(fields, "key", &m.Key); err != nil {
		return err
	}
	if err := decodeField(fields, "display_key", &m.DisplayKey); err != nil {
		return err
	}
	if raw, ok := fields["value"]; ok {
		m.Value = MetaValue(raw)
	}
	if raw, ok := fields["display_value"]; ok {
		m.DisplayValue = MetaValue(raw)
	}
	return nil
}

func (m MetaData) MarshalJSON() ([]byte, error) {
	out := cloneFields(m.fields)
	if _, ok := out["id"]; ok || m.ID != 0 {
		if err := encodeField(out, "id", m.ID); err != nil {
			return nil, err
		}
	}
	if err := encodeField(out, "key", m.Key); err != nil {
		return nil, err
	}
	out["value"] = m.Value.raw()
	if _, ok := out["display_key"]; ok || m.DisplayKey != "" {
		if err := encodeField(out, "display_key", m.DisplayKey); err != nil {
			return nil, err
		}
	}
	if _, ok := out["display_value"]; ok || m.DisplayValue != nil {
		out["display_value"] = m.DisplayValue.raw()
	}
	return json.Marshal(out)
}

// MetaValue is an arbitrary JSON metadata value.
type MetaValue json.RawMessage

// StringMetaValue builds a MetaValue holding a JSON string.
func StringMetaValue(s string) MetaValue {
	b, _ := json.Marshal(s)
	return MetaValue(b)
}

// String returns string values unquoted and anything else as its JSON text.
// null and missing values return "".
func (v MetaValue) String() string {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

func (v MetaValue) MarshalJSON() ([]byte, error) {
	return v.raw(), nil
}

func (v *MetaValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

func (v MetaValue) raw() json.RawMessage {
	if len(bytes.TrimSpace(v)) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(v)
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("expected an object, got null")
	}
	return fields, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

func encodeField(out map[string]json.RawMessage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	out[key] = b
	return nil
}

// encodeOptional writes non-nil pointers and leaves the received value alone otherwise.
func encodeOptional(out map[string]json.RawMessage, key string, v any) error {
	switch p := v.(type) {
	case *int64:
		if p == nil {
			return nil
		}
	case *string:
		if p == nil {
			return nil
		}
	}
	return encodeField(out, key, v)
}

func cloneFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields)+4)
	for k, v := range fields {
		out[k] = v
	}
	return out
}
