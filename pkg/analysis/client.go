// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package analysis

import (
	"bytes"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrUnexpectedStatus is wrapped by every error caused by an HTTP status the
// client cannot interpret.
var ErrUnexpectedStatus = errors.New("unexpected response status")

const (
	analyzePath  = "/analyze"
	registerPath = "/register"
)

type Options struct {
	// Timeout bounds a single attempt, retries included.
	Timeout  time.Duration
	RetryMax int
	// CacheSize is the number of analyses kept in memory. Zero disables the cache.
	CacheSize   int64
	InsecureTLS bool
	Logger      zerolog.Logger
}

// Client talks to the password analysis and account creation service.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	// register never retries: a lost reply may still have created the account.
	register *retryablehttp.Client
	cache    *ristretto.Cache
	log      zerolog.Logger
}

func NewClient(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("service url is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:     initHttpClient(opts),
		register: initRegisterClient(opts),
		log:      opts.Logger,
	}

	if opts.CacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: opts.CacheSize * 10,
			MaxCost:     opts.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("creating analysis cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

func initHttpClient(opts Options) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = leveledLogger{log: opts.Logger}
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 50 * time.Millisecond
	client.RetryWaitMax = 500 * time.Millisecond

	client.HTTPClient = &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
				// The stand-in service may run with a throwaway self-signed certificate.
				InsecureSkipVerify: opts.InsecureTLS,
			},
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return client
}

func initRegisterClient(opts Options) *retryablehttp.Client {
	client := initHttpClient(opts)
	client.RetryMax = 0
	client.CheckRetry = func(ctx context.Context, _ *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// Analyze returns the service analysis of password. Previously seen passwords
// are answered from the cache when one is configured.
func (c *Client) Analyze(ctx context.Context, password string) (Result, error) {
	key := cacheKey(password)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			if res, ok := v.(Result); ok {
				c.log.Debug().Msg("analysis served from cache")
				res.Cached = true
				return res, nil
			}
		}
	}

	res, reqID, err := c.post(ctx, c.http, analyzePath, AnalyzeRequest{Password: password})
	if err != nil {
		return Result{}, err
	}
	defer closeBody(res.Body, c.log)

	if res.StatusCode >= 400 {
		return Result{}, fmt.Errorf("analyze request %s: %w [%d] %s", reqID, ErrUnexpectedStatus, res.StatusCode, res.Status)
	}

	var result Result
	if err = json.NewDecoder(res.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decoding analyze response %s: %w", reqID, err)
	}

	if c.cache != nil {
		c.cache.Set(key, result, 1)
	}

	return result, nil
}

// Register asks the service to create an account. A rejection the service
// explains with an outcome body (taken username, weak password) is returned as
// an Outcome with Success false, not as an error.
func (c *Client) Register(ctx context.Context, username, password string) (Outcome, error) {
	res, reqID, err := c.post(ctx, c.register, registerPath, RegisterRequest{Username: username, Password: password})
	if err != nil {
		return Outcome{}, err
	}
	defer closeBody(res.Body, c.log)

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading register response %s: %w", reqID, err)
	}

	var outcome Outcome
	decodeErr := json.Unmarshal(body, &outcome)

	if res.StatusCode >= 400 {
		if decodeErr == nil && outcome.Message != "" {
			outcome.Success = false
			return outcome, nil
		}
		return Outcome{}, fmt.Errorf("register request %s: %w [%d] %s", reqID, ErrUnexpectedStatus, res.StatusCode, res.Status)
	}

	if decodeErr != nil {
		return Outcome{}, fmt.Errorf("decoding register response %s: %w", reqID, decodeErr)
	}

	return outcome, nil
}

// Close releases the cache.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

func (c *Client) post(ctx context.Context, client *retryablehttp.Client, path string, payload interface{}) (*http.Response, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	reqID := uuid.NewString()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, reqID, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	res, err := client.Do(req)
	if err != nil {
		return nil, reqID, fmt.Errorf("request %s to %s: %w", reqID, path, err)
	}

	return res, reqID, nil
}

// cacheKey keeps plain passwords out of the cache index.
func cacheKey(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func closeBody(body io.ReadCloser, log zerolog.Logger) {
	if err := body.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing response body")
	}
}

// leveledLogger routes retryablehttp logs through zerolog.
type leveledLogger struct {
	log zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
