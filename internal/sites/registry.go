package sites

import (
	"net/http"
	"strings"

	"github.com/imrishuroy/woo-reservation-bridge/internal/config"
	"github.com/imrishuroy/woo-reservation-bridge/internal/orders"
	"github.com/imrishuroy/woo-reservation-bridge/internal/reservations"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
	"github.com/imrishuroy/woo-reservation-bridge/internal/writeback"
)

type entry struct {
	store     *woocommerce.Client
	forwarder *reservations.Client
}

// Registry holds the upstream clients of every configured storefront.
type Registry struct {
	entries map[string]entry
}

// NewRegistry builds clients for every site in cfg. All clients share httpClient.
func NewRegistry(cfg *config.Config, httpClient *http.Client) *Registry {
	r := &Registry{entries: make(map[string]entry, len(cfg.Sites))}
	for name, s := range cfg.Sites {
		r.entries[name] = entry{
			store: woocommerce.NewClient(woocommerce.Credentials{
				Endpoint: s.WooEndpoint,
				Key:      s.WooAPIKey,
				Secret:   s.WooAPISecret,
			}, httpClient),
			forwarder: reservations.NewClient(reservations.Config{
				Endpoint: s.ReservationsAPIURL,
				AuthURL:  cfg.ReservationsAuthURL,
				Username: cfg.ReservationsUsername,
				Password: cfg.ReservationsPassword,
				Store:    cfg.ReservationsStore,
			}, httpClient),
		}
	}
	return r
}

func (r *Registry) lookup(site string) (entry, bool) {
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(site))]
	return e, ok
}

// Clients implements orders.SiteLookup.
func (r *Registry) Clients(site string) (orders.SiteClients, bool) {
	e, ok := r.lookup(site)
	if !ok {
		return orders.SiteClients{}, false
	}
	return orders.SiteClients{Catalog: e.store, Forwarder: e.forwarder}, true
}

// Store implements writeback.StoreLookup.
func (r *Registry) Store(site string) (writeback.OrderStore, bool) {
	e, ok := r.lookup(site)
	if !ok {
		return nil, false
	}
	return e.store, true
}
