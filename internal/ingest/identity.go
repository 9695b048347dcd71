package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/opencitizen/notifstore/internal/config"
)

// Identity is the customer record an identity service resolves a connection
// id to.
type Identity struct {
	CustomerID   string `json:"customer_id"`
	ConnectionID string `json:"connection_id"`
}

// IdentityResolver enriches a notification's customer reference. Absence of a
// resolver is a valid configuration; resolution failure is a degradation, not
// an error the ingestion path surfaces.
type IdentityResolver interface {
	Resolve(ctx context.Context, connectionID, customerID string) (*Identity, error)
}

type httpResolver struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

// NewResolver returns the configured identity resolver, or nil when no
// identity endpoint is configured.
func NewResolver(cfg config.Config, log *zap.Logger) IdentityResolver {
	if !cfg.HasIdentityService() {
		return nil
	}
	return &httpResolver{
		endpoint: cfg.IdentityEndpoint,
		apiKey:   cfg.IdentityAPIKey,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.Named("ingest.identity"),
	}
}

func (r *httpResolver) Resolve(ctx context.Context, connectionID, customerID string) (*Identity, error) {
	query := url.Values{}
	query.Set("connection_id", connectionID)
	if customerID != "" {
		query.Set("customer_id", customerID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity service status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
