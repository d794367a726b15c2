// Package clients provides HTTP implementations of the collaborator
// contracts (inventory, catalog, cart, warehouse). Each client is a thin
// REST adapter: transport and status-code mapping live here, semantics live
// in the domain interfaces.
package clients

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds each collaborator call when the caller supplies no
// client of its own.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps collaborator response bodies.
const maxBodySize = 1 << 20

// base holds what every collaborator client shares.
type base struct {
	baseURL string
	http    *http.Client
}

func newBase(baseURL string, client *http.Client) base {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return base{baseURL: baseURL, http: client}
}

// do performs one request and returns the status code and body. JSON bodies
// are sent with the right content type; a nil body sends none.
func (b *base) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response")
	}
	return resp.StatusCode, data, nil
}

// decDecimal reads a JSON number as a decimal without a float64 round trip.
func decDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}
