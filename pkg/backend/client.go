package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// Client talks to the Supabase REST (PostgREST) API with a fixed credential.
// A Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	scope      Scope
	httpClient *http.Client
}

// Scope returns the privilege level of the client's credential.
func (c *Client) Scope() Scope {
	return c.scope
}

// URL returns the project URL the client was built for.
func (c *Client) URL() string {
	return c.baseURL.String()
}

// From starts a query against a table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, params: url.Values{}}
}

// Query is a single PostgREST request under construction. Queries are not
// safe for concurrent use; build a new one per request.
type Query struct {
	client *Client
	table  string
	params url.Values
}

// Eq filters rows where column equals value.
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// In filters rows where column is one of values.
func (q *Query) In(column string, values []string) *Query {
	buf := bytes.NewBufferString("in.(")
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(v))
	}
	buf.WriteByte(')')
	q.params.Add(column, buf.String())
	return q
}

// Order sorts the result by column.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Select fetches rows into dest, which must be a pointer to a slice.
func (q *Query) Select(ctx context.Context, columns string, dest any) error {
	if columns == "" {
		columns = "*"
	}
	q.params.Set("select", columns)
	return q.do(ctx, http.MethodGet, nil, nil, dest)
}

// Insert adds rows. rows may be a single struct or a slice.
func (q *Query) Insert(ctx context.Context, rows any) error {
	return q.do(ctx, http.MethodPost, rows, map[string]string{"Prefer": "return=minimal"}, nil)
}

// Upsert inserts rows, merging into existing rows that collide on onConflict.
func (q *Query) Upsert(ctx context.Context, rows any, onConflict string) error {
	if onConflict != "" {
		q.params.Set("on_conflict", onConflict)
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	return q.do(ctx, http.MethodPost, rows, headers, nil)
}

// Update patches every row matched by the query's filters.
func (q *Query) Update(ctx context.Context, patch any) error {
	if len(q.params) == 0 {
		return apperrors.ErrValidation.WithMessage("refusing to update without a filter")
	}
	return q.do(ctx, http.MethodPatch, patch, map[string]string{"Prefer": "return=minimal"}, nil)
}

// Delete removes every row matched by the query's filters.
func (q *Query) Delete(ctx context.Context) error {
	if len(q.params) == 0 {
		return apperrors.ErrValidation.WithMessage("refusing to delete without a filter")
	}
	return q.do(ctx, http.MethodDelete, nil, nil, nil)
}

func (q *Query) do(ctx context.Context, method string, body any, headers map[string]string, dest any) error {
	endpoint := q.client.baseURL.JoinPath("rest", "v1", q.table)
	endpoint.RawQuery = q.params.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.ErrValidation.WithMessage("failed to encode request body").WithCause(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return apperrors.ErrInternal.WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := q.client.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrBackendRequestFailed.WithCause(err).WithMetadata("table", q.table)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp, q.table)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperrors.ErrBackendRequestFailed.
			WithMessage("failed to decode response").
			WithCause(err).
			WithMetadata("table", q.table)
	}
	return nil
}

// apiError is the error body PostgREST returns.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func responseError(resp *http.Response, table string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	msg := fmt.Sprintf("status %d", resp.StatusCode)
	var body apiError
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		msg = fmt.Sprintf("status %d: %s", resp.StatusCode, body.Message)
	}

	base := apperrors.ErrBackendRequestFailed.WithMessage(msg)
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
		base = &apperrors.MosaicError{Code: base.Code, Message: base.Message}
	}
	base = base.WithMetadata("table", table).WithMetadata("status", strconv.Itoa(resp.StatusCode))
	if body.Code != "" {
		base = base.WithMetadata("pg_code", body.Code)
	}
	return base
}
