package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-health-keeper/internal/config"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/utils"
	"github.com/MKhiriev/go-health-keeper/models"
)

// fetchBackoffBase is the first fibonacci backoff step between snapshot
// fetch attempts.
const fetchBackoffBase = 200 * time.Millisecond

type httpRemoteAdapter struct {
	client       *utils.HTTPClient
	fetchRetries uint64

	mu        sync.RWMutex
	token     string
	tokenInfo TokenInfo

	logger *logger.Logger
}

// NewHTTPRemoteAdapter constructs an HTTP/REST implementation of
// [RemoteAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress, configures the underlying HTTP client with the
// resolved base URL and request timeout, and installs the initial bearer
// token from appCfg (when one is configured).
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPRemoteAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, syncCfg config.ClientSync, logger *logger.Logger) (RemoteAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewJSONHTTPClient(baseURL, adapterCfg.RequestTimeout)

	retries := syncCfg.FetchRetries
	if retries < 0 {
		retries = 0
	}

	h := &httpRemoteAdapter{
		client:       client,
		fetchRetries: uint64(retries),
		logger:       logger,
	}

	if appCfg.AuthToken != "" {
		h.SetToken(appCfg.AuthToken)
	}

	return h, nil
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

// SetToken implements [RemoteAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests, and introspects it to log the subject and expiry.
func (h *httpRemoteAdapter) SetToken(token string) {
	token = strings.TrimSpace(token)
	info := introspectToken(token)

	h.mu.Lock()
	h.token = token
	h.tokenInfo = info
	h.mu.Unlock()

	if token == "" {
		return
	}

	event := h.logger.Info().Str("func", "httpRemoteAdapter.SetToken").Str("sub", info.Subject)
	if info.ExpiresAt != nil {
		event = event.Time("exp", *info.ExpiresAt)
	}
	event.Msg("bearer token installed")

	if info.Expired(time.Now()) {
		h.logger.Warn().
			Str("func", "httpRemoteAdapter.SetToken").
			Str("sub", info.Subject).
			Msg("installed token is already expired")
	}
}

// Token implements [RemoteAdapter].
func (h *httpRemoteAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// introspectToken parses the token without verifying its signature. The
// remote stays authoritative for validity; introspection only serves local
// logging and early expiry detection.
func introspectToken(token string) TokenInfo {
	if token == "" {
		return TokenInfo{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info
}

// checkToken rejects a locally known-expired credential without spending a
// network call. An empty token passes: the request goes out unauthenticated
// and the remote answers 401 if it minds.
func (h *httpRemoteAdapter) checkToken() error {
	h.mu.RLock()
	token, info := h.token, h.tokenInfo
	h.mu.RUnlock()

	if token != "" && info.Expired(time.Now()) {
		return fmt.Errorf("%w: bearer token expired", ErrUnauthorized)
	}
	return nil
}

// FetchWindow implements [RemoteAdapter]. Day snapshots are fetched one
// local day at a time and indexed into a single [models.SyncSnapshot].
func (h *httpRemoteAdapter) FetchWindow(ctx context.Context, window models.Window) (models.SyncSnapshot, error) {
	log := logger.FromContext(ctx)

	var all []models.Record
	for _, day := range window.Days() {
		if err := ctx.Err(); err != nil {
			return models.SyncSnapshot{}, err
		}

		records, err := h.fetchDay(ctx, day)
		if err != nil {
			log.Err(err).
				Str("func", "httpRemoteAdapter.FetchWindow").
				Str("date", utils.FormatDay(day)).
				Msg("failed to fetch day snapshot")
			return models.SyncSnapshot{}, err
		}
		all = append(all, records...)
	}

	log.Debug().
		Str("func", "httpRemoteAdapter.FetchWindow").
		Int("days", len(window.Days())).
		Int("records", len(all)).
		Msg("remote window fetched")

	return models.NewSyncSnapshot(window, all), nil
}

// fetchDay GETs one day snapshot, retrying transient failures (transport
// errors and 5xx responses) with fibonacci backoff.
func (h *httpRemoteAdapter) fetchDay(ctx context.Context, day time.Time) ([]models.Record, error) {
	if err := h.checkToken(); err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(h.fetchRetries, retry.NewFibonacci(fetchBackoffBase))

	var dtos []models.RecordDTO
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, reqErr := h.authedRequest(ctx).
			SetQueryParam("date", utils.FormatDay(day)).
			Get("/api/records")
		if reqErr != nil {
			return retry.RetryableError(fmt.Errorf("%w: fetch day request: %w", ErrTransport, reqErr))
		}
		if mapErr := mapHTTPError(resp); mapErr != nil {
			if IsRetryable(mapErr) {
				return retry.RetryableError(mapErr)
			}
			return mapErr
		}

		dtos = dtos[:0]
		if decodeErr := json.Unmarshal(resp.Body(), &dtos); decodeErr != nil {
			return fmt.Errorf("decode day snapshot: %w", decodeErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(dtos))
	for _, dto := range dtos {
		records = append(records, dto.ToRecord(models.StateSynced))
	}
	return records, nil
}

// Push implements [RemoteAdapter].
func (h *httpRemoteAdapter) Push(ctx context.Context, record models.Record) error {
	if err := h.checkToken(); err != nil {
		return err
	}

	resp, err := h.authedRequest(ctx).
		SetBody(models.DTOFromRecord(record)).
		Post("/api/records")
	if err != nil {
		return fmt.Errorf("%w: push request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

// Remove implements [RemoteAdapter]. A 404 response counts as success: the
// record is already absent remotely.
func (h *httpRemoteAdapter) Remove(ctx context.Context, ref models.RecordRef) error {
	if err := h.checkToken(); err != nil {
		return err
	}

	resp, err := h.authedRequest(ctx).
		SetPathParam("id", ref.ID).
		Delete("/api/records/{id}")
	if err != nil {
		return fmt.Errorf("%w: remove request: %w", ErrTransport, err)
	}

	if resp.StatusCode() == 404 {
		return nil
	}
	return mapHTTPError(resp)
}

// Ping implements [RemoteAdapter]. Any HTTP response counts as reachable.
func (h *httpRemoteAdapter) Ping(ctx context.Context) bool {
	_, err := h.client.R().
		SetContext(ctx).
		Head("/api/records")
	return err == nil
}

func (h *httpRemoteAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
