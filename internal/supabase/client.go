// Package supabase talks to the hosted store over its REST gateway.
//
// Two credential paths exist. NewUserClient forwards an end user's access
// token so the store's row-level security applies. NewAdminClient uses the
// service-role key and bypasses RLS; it is for trusted server-side work
// only and must be built per invocation, never cached across requests.
package supabase

import (
	"errors"
	"net/http"
	"time"

	"github.com/nikhilbhutani/schoolhub/internal/config"
)

var (
	ErrMissingURL        = errors.New("supabase: SUPABASE_URL is not set")
	ErrMissingServiceKey = errors.New("supabase: SUPABASE_SERVICE_ROLE_KEY is not set")
	ErrMissingAnonKey    = errors.New("supabase: SUPABASE_ANON_KEY is not set")
)

// ClientOptions mirrors the auth settings of the JS client. Server-side
// clients never refresh or persist sessions.
type ClientOptions struct {
	AutoRefreshToken bool
	PersistSession   bool
}

type Client struct {
	baseURL    string
	apiKey     string
	bearer     string
	elevated   bool
	opts       ClientOptions
	httpClient *http.Client
}

func NewAdminClient(cfg config.SupabaseConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.ServiceRoleKey == "" {
		return nil, ErrMissingServiceKey
	}
	return newClient(cfg.URL, cfg.ServiceRoleKey, cfg.ServiceRoleKey, true), nil
}

// NewUserClient acts as the holder of accessToken. An empty token acts as anon.
func NewUserClient(cfg config.SupabaseConfig, accessToken string) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.AnonKey == "" {
		return nil, ErrMissingAnonKey
	}
	bearer := accessToken
	if bearer == "" {
		bearer = cfg.AnonKey
	}
	return newClient(cfg.URL, cfg.AnonKey, bearer, false), nil
}

func newClient(baseURL, apiKey, bearer string, elevated bool) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		bearer:   bearer,
		elevated: elevated,
		opts: ClientOptions{
			AutoRefreshToken: false,
			PersistSession:   false,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Options() ClientOptions { return c.opts }

// Elevated reports whether the client bypasses row-level security.
func (c *Client) Elevated() bool { return c.elevated }

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer)
}
