package enrichment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
)

// NormalizeLineItem derives canonical metadata entries from the storefront
// labels of a line item. Only entries present before the call are scanned.
// A canonical entry left by an earlier delivery is overwritten in place,
// otherwise the derived entry is appended. Nothing is removed.
func NormalizeLineItem(ctx context.Context, item *woocommerce.LineItem) {
	logger := logging.FromContext(ctx)
	scanned := len(item.MetaData)

	// canonical entries from a previous delivery, by key, in order
	existing := map[string][]int{}
	for i := 0; i < scanned; i++ {
		m := item.MetaData[i]
		if isCanonical(m) {
			existing[m.Key] = append(existing[m.Key], i)
		}
	}

	var derived []woocommerce.MetaData
	for i := 0; i < scanned; i++ {
		src := item.MetaData[i]
		r, ok := displayKeyRules[src.DisplayKey]
		if !ok {
			continue
		}
		value, err := r.apply(src.Value)
		if err != nil {
			fields := []zap.Field{
				zap.String("display_key", src.DisplayKey),
				zap.String("canonical_key", r.key),
				zap.String("value", src.Value.String()),
				zap.Error(err),
			}
			if errors.Is(err, ErrOutOfRange) {
				logger.Warn("invalid date or time in line item metadata", fields...)
			} else {
				logger.Error("unexpected error normalizing line item metadata", fields...)
			}
			continue
		}
		derived = append(derived, woocommerce.MetaData{
			Key:          r.key,
			Value:        value,
			DisplayKey:   r.key,
			DisplayValue: value,
		})
	}

	for _, d := range derived {
		if slots := existing[d.Key]; len(slots) > 0 {
			target := &item.MetaData[slots[0]]
			target.Key, target.Value = d.Key, d.Value
			target.DisplayKey, target.DisplayValue = d.DisplayKey, d.DisplayValue
			existing[d.Key] = slots[1:]
			continue
		}
		item.MetaData = append(item.MetaData, d)
	}
}

func (r rule) apply(v woocommerce.MetaValue) (woocommerce.MetaValue, error) {
	switch r.transform {
	case dateValue:
		s, err := ParseDate(v.String())
		if err != nil {
			return nil, err
		}
		return woocommerce.StringMetaValue(s), nil
	case timeValue:
		s, err := ParseTime(v.String())
		if err != nil {
			return nil, err
		}
		return woocommerce.StringMetaValue(s), nil
	default:
		return v, nil
	}
}

func isCanonical(m woocommerce.MetaData) bool {
	if m.Key != m.DisplayKey {
		return false
	}
	for _, r := range displayKeyRules {
		if r.key == m.Key {
			return true
		}
	}
	return false
}
