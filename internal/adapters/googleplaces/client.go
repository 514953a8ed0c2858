// Package googleplaces looks up hotel photos and contact details through the
// Google Places web API. The provider is optional: a client built without a
// key reports itself unconfigured and the enrichment stage skips it.
package googleplaces

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_scout/internal/adapters/observability"
	"hotel_scout/internal/domain"
)

const (
	baseURL   = "https://maps.googleapis.com/maps/api/place"
	maxPhotos = 5
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

// New builds a client. An empty key yields an unconfigured client rather
// than an error so callers can wire the provider unconditionally.
func New(key string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: baseURL,
		hc:   &http.Client{Timeout: 15 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) Configured() bool { return c.key != "" }

// SetBase overrides the API endpoint. Tests point this at a local server.
func (c *Client) SetBase(base string) { c.base = strings.TrimRight(base, "/") }

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Phone   string  `json:"formatted_phone_number"`
		Website string  `json:"website"`
		Rating  float64 `json:"rating"`
		Photos  []struct {
			Reference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

// Lookup resolves a hotel name to its place record: a text search for the
// place ID, then a details fetch for phone, website, rating and photo
// references. Returns (nil, nil) when no place matches.
func (c *Client) Lookup(ctx context.Context, name, location string) (*domain.PlaceInfo, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("places client is not configured")
	}

	q := url.Values{}
	q.Set("query", name+" hotel "+location)
	q.Set("key", c.key)
	var search textSearchResponse
	if err := c.get(ctx, "textsearch", c.base+"/textsearch/json?"+q.Encode(), &search); err != nil {
		return nil, err
	}
	if search.Status != "OK" || len(search.Results) == 0 {
		return nil, nil
	}
	placeID := search.Results[0].PlaceID

	q = url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "photos,formatted_phone_number,website,rating")
	q.Set("key", c.key)
	var details detailsResponse
	if err := c.get(ctx, "details", c.base+"/details/json?"+q.Encode(), &details); err != nil {
		return nil, err
	}
	if details.Status != "OK" {
		return nil, nil
	}

	info := &domain.PlaceInfo{
		PlaceID: placeID,
		Phone:   details.Result.Phone,
		Website: details.Result.Website,
		Rating:  details.Result.Rating,
	}
	for i, p := range details.Result.Photos {
		if i == maxPhotos {
			break
		}
		info.Photos = append(info.Photos, c.photoURL(p.Reference))
	}
	return info, nil
}

func (c *Client) photoURL(ref string) string {
	q := url.Values{}
	q.Set("maxwidth", "800")
	q.Set("photoreference", ref)
	q.Set("key", c.key)
	return c.base + "/photo?" + q.Encode()
}

// get performs a GET with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("places", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("places", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
