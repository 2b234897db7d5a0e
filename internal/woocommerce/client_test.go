package woocommerce

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

func newStore(t *testing.T, handler http.HandlerFunc) (*Client, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(b), Header: r.Header.Clone()})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Credentials{Endpoint: srv.URL + "/wp-json/wc/v3/", Key: "ck", Secret: "cs"}, srv.Client()), &reqs
}

func TestClient_GetProductAndVariation(t *testing.T) {
	c, reqs := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/products/41":
			_, _ = w.Write([]byte(`{"id":41,"name":"Tour","variations":[55,56]}`))
		case "/wp-json/wc/v3/products/41/variations/55":
			_, _ = w.Write([]byte(`{"id":55,"sku":"XC-01"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := requestctx.WithCorrelationID(context.Background(), "cid-1")
	p, err := c.GetProduct(ctx, 41)
	require.NoError(t, err)
	assert.Equal(t, []int64{55, 56}, p.Variations)

	v, err := c.GetVariation(ctx, 41, 55)
	require.NoError(t, err)
	assert.True(t, v.HasSKU)
	assert.Equal(t, "XC-01", v.SKU)

	require.Len(t, *reqs, 2)
	user, pass, ok := (&http.Request{Header: (*reqs)[0].Header}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "ck", user)
	assert.Equal(t, "cs", pass)
	assert.Equal(t, "cid-1", (*reqs)[0].Header.Get(requestctx.HeaderCorrelationID))
}

func TestClient_VariationWithoutSKU(t *testing.T) {
	c, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":55}`))
	})

	v, err := c.GetVariation(context.Background(), 41, 55)
	require.NoError(t, err)
	assert.False(t, v.HasSKU)
}

func TestClient_NonSuccessIsAPIError(t *testing.T) {
	c, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"woocommerce_rest_cannot_view"}`))
	})

	_, err := c.GetProduct(context.Background(), 41)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "woocommerce_rest_cannot_view")
}

func TestClient_SetReservationID(t *testing.T) {
	c, reqs := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":727}`))
	})

	require.NoError(t, c.SetReservationID(context.Background(), 727, "R123"))

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/wp-json/wc/v3/orders/727", got.Path)
	assert.JSONEq(t, `{"meta_data":[{"key":"_reservation_id","value":"R123"}]}`, got.Body)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
}
