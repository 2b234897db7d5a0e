package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
)

const maxErrorBody = 4096

// Config locates the reservation API. An empty AuthURL skips the token exchange.
type Config struct {
	Endpoint string
	AuthURL  string
	Username string
	Password string
	Store    string
}

// Client forwards orders to the reservation API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Sucursal string `json:"sucursal"`
}

type authResponse struct {
	Token string `json:"token"`
}

// Forward posts the enriched order and decodes the outcome.
func (c *Client) Forward(ctx context.Context, order *woocommerce.Order) (*Response, error) {
	var token string
	if c.cfg.AuthURL != "" {
		t, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	logging.FromContext(ctx).Debug("data to send", zap.ByteString("payload", payload))

	body, err := c.post(ctx, c.cfg.Endpoint, payload, token)
	if err != nil {
		return nil, err
	}
	return decodeResponse(body)
}

func (c *Client) token(ctx context.Context) (string, error) {
	payload, err := json.Marshal(authRequest{
		Username: c.cfg.Username,
		Password: c.cfg.Password,
		Sucursal: c.cfg.Store,
	})
	if err != nil {
		return "", fmt.Errorf("marshal auth request: %w", err)
	}

	body, err := c.post(ctx, c.cfg.AuthURL, payload, "")
	if err != nil {
		return "", fmt.Errorf("auth: %w", err)
	}
	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if auth.Token == "" {
		return "", ErrMissingToken
	}
	return auth.Token, nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cid := requestctx.CorrelationID(ctx); cid != "" {
		req.Header.Set(requestctx.HeaderCorrelationID, cid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reservation api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
