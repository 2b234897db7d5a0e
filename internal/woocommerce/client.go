package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
)

const maxErrorBody = 4096

// APIError is returned for non-2xx responses from the store.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woocommerce %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Credentials identify one storefront's REST API.
type Credentials struct {
	Endpoint string
	Key      string
	Secret   string
}

// Client talks to the WooCommerce REST API (v3) of a single storefront.
type Client struct {
	creds Credentials
	http  *http.Client
}

// NewClient returns a Client. A nil httpClient uses http.DefaultClient.
func NewClient(creds Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	creds.Endpoint = strings.TrimRight(creds.Endpoint, "/")
	return &Client{creds: creds, http: httpClient}
}

// Product is the subset of a catalog product the bridge reads.
type Product struct {
	ID         int64   `json:"id"`
	Variations []int64 `json:"variations"`
}

// Variation is a product variation. HasSKU is true when the response carried a sku key at all.
type Variation struct {
	ID     int64
	SKU    string
	HasSKU bool
}

func (v *Variation) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("variation: %w", err)
	}
	*v = Variation{}
	if err := decodeField(fields, "id", &v.ID); err != nil {
		return err
	}
	if raw, ok := fields["sku"]; ok {
		v.HasSKU = true
		v.SKU = MetaValue(raw).String()
	}
	return nil
}

// GetProduct fetches /products/{id}.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var p Product
	path := "/products/" + strconv.FormatInt(productID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVariation fetches /products/{id}/variations/{variation_id}.
func (c *Client) GetVariation(ctx context.Context, productID, variationID int64) (*Variation, error) {
	var v Variation
	path := fmt.Sprintf("/products/%d/variations/%d", productID, variationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

type orderMetaUpdate struct {
	MetaData []orderMetaEntry `json:"meta_data"`
}

type orderMetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetReservationID writes the confirmation id to the order's _reservation_id metadata.
func (c *Client) SetReservationID(ctx context.Context, orderID int64, reservationID string) error {
	body := orderMetaUpdate{MetaData: []orderMetaEntry{{Key: ReservationIDKey, Value: reservationID}}}
	path := "/orders/" + strconv.FormatInt(orderID, 10)
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.creds.Endpoint+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.creds.Key, c.creds.Secret)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cid := requestctx.CorrelationID(ctx); cid != "" {
		req.Header.Set(requestctx.HeaderCorrelationID, cid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("woocommerce %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
