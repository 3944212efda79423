package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRecvWindow = 5000
	userAgent         = "venuehub/1.0"
)

// client is the HTTP transport shared by every call of one handle.
type client struct {
	venue      string
	baseURL    string
	apiKey     string
	secret     string
	recvWindow int
	httpClient *http.Client
	logger     *zap.Logger
}

// apiError is the error body returned by the venue.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Venue error codes with a dedicated category.
const (
	codeUnauthorized     = -1002
	codeInvalidSignature = -1022
	codeInvalidSymbol    = -1121
	codeNoSuchOrder      = -2013
	codeRejectedMBXKey   = -2014
	codeInvalidAPIKey    = -2015
)

func (c *client) get(ctx context.Context, path string, params url.Values, signed bool, out any) error {
	return c.do(ctx, http.MethodGet, path, params, signed, out)
}

func (c *client) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	if params == nil {
		params = url.Values{}
	}

	if signed {
		if c.apiKey == "" || c.secret == "" {
			return fmt.Errorf("%s %s: %w: API key and secret are required", method, path, gateway.ErrAuthentication)
		}
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("recvWindow", strconv.Itoa(c.recvWindow))
	}

	query := params.Encode()
	if signed {
		query += "&signature=" + c.sign(query)
	}

	requestURL := c.baseURL + path
	if query != "" {
		requestURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	c.logger.Debug("venue-request",
		zap.String("venue", c.venue),
		zap.String("method", method),
		zap.String("path", path))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	RequestDuration.WithLabelValues(c.venue, path).Observe(time.Since(start).Seconds())
	if err != nil {
		RequestErrorsTotal.WithLabelValues(c.venue, "network").Inc()
		return fmt.Errorf("%s %s: %w: %v", method, path, gateway.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		RequestErrorsTotal.WithLabelValues(c.venue, "network").Inc()
		return fmt.Errorf("%s %s: %w: read body: %v", method, path, gateway.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.classify(method, path, resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		RequestErrorsTotal.WithLabelValues(c.venue, "decode").Inc()
		return fmt.Errorf("%s %s: %w: unmarshal response: %v", method, path, gateway.ErrNetwork, err)
	}

	return nil
}

// classify turns a non-200 response into an error wrapping a gateway category.
func (c *client) classify(method, path string, status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Msg
	if msg == "" {
		msg = string(body)
	}

	var category error
	switch {
	case status >= 500, status == http.StatusTooManyRequests, status == http.StatusTeapot:
		category = gateway.ErrNetwork
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		apiErr.Code == codeUnauthorized, apiErr.Code == codeInvalidSignature,
		apiErr.Code == codeRejectedMBXKey, apiErr.Code == codeInvalidAPIKey:
		category = gateway.ErrAuthentication
	case apiErr.Code == codeInvalidSymbol, apiErr.Code == codeNoSuchOrder, status == http.StatusNotFound:
		category = gateway.ErrNotFound
	default:
		category = gateway.ErrRejected
	}

	label := "rejected"
	switch {
	case errors.Is(category, gateway.ErrNetwork):
		label = "network"
	case errors.Is(category, gateway.ErrAuthentication):
		label = "auth"
	case errors.Is(category, gateway.ErrNotFound):
		label = "not_found"
	}
	RequestErrorsTotal.WithLabelValues(c.venue, label).Inc()

	return fmt.Errorf("%s %s: %w: status %d code %d: %s", method, path, category, status, apiErr.Code, msg)
}

// sign returns the hex HMAC-SHA256 of the query string keyed by the API secret.
func (c *client) sign(query string) string {
	h := hmac.New(sha256.New, []byte(c.secret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}
