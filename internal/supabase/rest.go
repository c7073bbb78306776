package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// APIError is a non-2xx answer from the REST gateway.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

type condition struct {
	column string
	op     string
	value  string
}

// Filter is a list of PostgREST column conditions joined by AND.
type Filter []condition

func Eq(column, value string) Filter {
	return Filter{{column: column, op: "eq", value: value}}
}

func (f Filter) values() url.Values {
	v := url.Values{}
	for _, c := range f {
		v.Add(c.column, c.op+"."+c.value)
	}
	return v
}

// Select decodes matching rows of table into dest (a pointer to a slice).
func (c *Client) Select(ctx context.Context, table, columns string, f Filter, dest any) error {
	q := f.values()
	if columns == "" {
		columns = "*"
	}
	q.Set("select", columns)
	return c.do(ctx, http.MethodGet, table, q, nil, "", dest)
}

// Insert writes rows (a struct or slice). When dest is non-nil the stored
// representation is decoded into it.
func (c *Client) Insert(ctx context.Context, table string, rows any, dest any) error {
	return c.do(ctx, http.MethodPost, table, nil, rows, preferFor(dest), dest)
}

// Upsert inserts rows, ignoring those that conflict on onConflict.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, rows any, dest any) error {
	q := url.Values{}
	q.Set("on_conflict", onConflict)
	prefer := "resolution=ignore-duplicates," + preferFor(dest)
	return c.do(ctx, http.MethodPost, table, q, rows, prefer, dest)
}

func preferFor(dest any) string {
	if dest == nil {
		return "return=minimal"
	}
	return "return=representation"
}

func (c *Client) do(ctx context.Context, method, table string, q url.Values, body any, prefer string, dest any) error {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(table))
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", table, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("create %s request: %w", table, err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}
