// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/golang/snappy"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/utils"
)

const (
	contentEncodingSnappy = "snappy"

	manifestPath        = "/v1/storage/manifest"
	manifestVersionPath = "/v1/storage/manifest/version/{version}"
	storagePath         = "/v1/storage"
	storageReadPath     = "/v1/storage/read"
	syncMessagesPath    = "/v1/sync-messages"
)

// newHTTPClient builds the resty client shared by the remote store and the
// sync messenger: base URL, timeout, bearer token, outbound rate limit and
// snappy response decoding.
func newHTTPClient(adapterCfg config.ClientAdapter, appCfg config.ClientApp) (*utils.HTTPClient, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout).
		SetHeader("Accept-Encoding", contentEncodingSnappy)

	if token := strings.TrimSpace(appCfg.AuthToken); token != "" {
		client.SetAuthToken(token)
	}

	if adapterCfg.RateLimit > 0 {
		burst := adapterCfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(adapterCfg.RateLimit), burst)
		client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.Header().Get("Content-Encoding") != contentEncodingSnappy {
			return nil
		}
		decoded, err := snappy.Decode(nil, resp.Body())
		if err != nil {
			return fmt.Errorf("%w: snappy body: %w", ErrUnexpectedResponse, err)
		}
		resp.SetBody(decoded)
		return nil
	})

	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// snappyJSON encodes v as JSON and compresses it with snappy block format.
func snappyJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func withSnappyBody(req *resty.Request, v any) (*resty.Request, error) {
	body, err := snappyJSON(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return req.
		SetHeader("Content-Type", "application/json").
		SetHeader("Content-Encoding", contentEncodingSnappy).
		SetBody(body), nil
}
