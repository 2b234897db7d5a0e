package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
)

// Validator checks inbound orders and sites.
type Validator struct {
	v     *validatorv10.Validate
	sites map[string]struct{}
}

// New returns a Validator accepting the given sites (case-insensitive).
func New(sites []string) *Validator {
	allowed := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		allowed[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	v := validatorv10.New()
	_ = v.RegisterValidation("site", func(fl validatorv10.FieldLevel) bool {
		_, ok := allowed[strings.ToLower(fl.Field().String())]
		return ok
	})

	return &Validator{v: v, sites: allowed}
}

// ParseOrder decodes a webhook body. Malformed JSON yields ErrInvalidPayload.
// Well-formed JSON that is not an object (null, arrays, scalars) decodes to an
// empty order, which ValidateOrder rejects.
func ParseOrder(body []byte) (*woocommerce.Order, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidPayload)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &woocommerce.Order{}, nil
	}

	var order woocommerce.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &order, nil
}

// ValidateOrder requires a non-zero id and a meta_data array (possibly empty).
func (v *Validator) ValidateOrder(order *woocommerce.Order) error {
	if order == nil {
		return ErrInvalidOrder
	}
	if err := v.v.Struct(order); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, formatErrors(err))
	}
	return nil
}

// ValidateSite rejects sites that are not configured.
func (v *Validator) ValidateSite(site string) error {
	if err := v.v.Struct(siteParam{Site: site}); err != nil {
		return fmt.Errorf("%w: unknown site %q", ErrInvalidPayload, site)
	}
	return nil
}

// FieldErrors flattens validator errors into namespace -> message.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Tag()
		}
	} else if err != nil {
		out["error"] = err.Error()
	}
	return out
}

func formatErrors(err error) string {
	fields := FieldErrors(err)
	parts := make([]string, 0, len(fields))
	for k, tag := range fields {
		parts = append(parts, k+" "+tag)
	}
	return strings.Join(parts, ", ")
}
