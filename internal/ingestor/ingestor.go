package ingestor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	classifierModule "kevscope/internal/classifier"
	normalizerModule "kevscope/internal/normalizer"
	riskmodelModule "kevscope/internal/riskmodel"
	"kevscope/internal/types"
	envsModule "kevscope/pkg/envs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrFeedUnavailable is returned when the feed cannot be fetched and no last
// known good copy exists. The engine does not retry internally.
var ErrFeedUnavailable = errors.New("vulnerability feed is unavailable")

const (
	feedCacheKey = "kev:feed:last-known-good"
	feedCacheTTL = 72 * time.Hour
)

// Ingestor owns the refresh cycle: fetch the raw feed, normalize every
// record, classify every record, then swap the in-process snapshot in one
// step so downstream calls never see a partial update.
type Ingestor struct {
	Logger      *zap.Logger
	Envs        *envsModule.Envs
	RedisClient *redis.Client
	Client      *http.Client

	mu        sync.RWMutex
	records   []types.VulnerabilityRecord
	fetchedAt time.Time
}

func New(envs *envsModule.Envs, logger *zap.Logger, redisClient *redis.Client) *Ingestor {
	return &Ingestor{
		Logger:      logger,
		Envs:        envs,
		RedisClient: redisClient,
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch performs one GET against the configured endpoint and decodes the raw
// record array. On transport or status failure it falls back to the cached
// last known good body when one exists.
func (i *Ingestor) Fetch(ctx context.Context) ([]types.RawVulnerability, error) {
	body, fetchErr := i.fetchBody(ctx)
	if fetchErr != nil {
		cached, cacheErr := i.cachedBody(ctx)
		if cacheErr != nil {
			return nil, fetchErr
		}
		i.Logger.Info("Serving last known good feed from cache")
		body = cached
	}

	raw, err := decodeFeed(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding feed body: %v", ErrFeedUnavailable, err)
	}
	return raw, nil
}

func (i *Ingestor) fetchBody(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.Envs.FEED_URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrFeedUnavailable, err)
	}
	// The feed may sit behind a tunnel that answers with an HTML interstitial
	// unless this header is present.
	req.Header.Set("ngrok-skip-browser-warning", "true")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := i.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFeedUnavailable, err)
	}

	if i.RedisClient != nil {
		if setErr := i.RedisClient.Set(ctx, feedCacheKey, body, feedCacheTTL).Err(); setErr != nil {
			i.Logger.Sugar().Errorf("Failed to cache feed body: %v", setErr)
		}
	}

	return body, nil
}

func (i *Ingestor) cachedBody(ctx context.Context) ([]byte, error) {
	if i.RedisClient == nil {
		return nil, errors.New("no cache configured")
	}
	value, err := i.RedisClient.Get(ctx, feedCacheKey).Result()
	if err != nil {
		i.Logger.Info("Cache miss for last known good feed")
		return nil, err
	}
	return []byte(value), nil
}

// decodeFeed accepts the bare array contract plus the upstream catalog shape
// that wraps the array in a "vulnerabilities" key.
func decodeFeed(body []byte) ([]types.RawVulnerability, error) {
	var raw []types.RawVulnerability
	if err := json.Unmarshal(body, &raw); err == nil {
		return raw, nil
	}

	var wrapped struct {
		Vulnerabilities []types.RawVulnerability `json:"vulnerabilities"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Vulnerabilities == nil {
		return nil, errors.New("no vulnerability array in feed body")
	}
	return wrapped.Vulnerabilities, nil
}

// Refresh fetches the feed, runs the full pipeline over it and replaces the
// snapshot atomically. A failed refresh leaves the previous snapshot serving.
func (i *Ingestor) Refresh(ctx context.Context) error {
	raw, err := i.Fetch(ctx)
	if err != nil {
		return err
	}

	records := make([]types.VulnerabilityRecord, 0, len(raw))
	for _, item := range raw {
		records = append(records, normalizerModule.Normalize(item))
	}

	// population counts are built once per record set, not per identifier
	counts := riskmodelModule.PopulationCounts(records)
	for idx := range records {
		records[idx].RiskTier = classifierModule.Classify(records[idx].Weaknesses, counts, len(records))
	}

	i.mu.Lock()
	i.records = records
	i.fetchedAt = time.Now()
	i.mu.Unlock()

	i.Logger.Info(fmt.Sprintf("Feed refresh has ingested %d vulnerabilities successfully!", len(records)))
	return nil
}

// Snapshot returns the current record set and its fetch time. The slice is
// replaced wholesale on refresh and must be treated as read-only.
func (i *Ingestor) Snapshot() ([]types.VulnerabilityRecord, time.Time) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.records, i.fetchedAt
}

// StartPolling re-runs Refresh on a ticker until the context is done,
// keeping the last good snapshot across failures.
func (i *Ingestor) StartPolling(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := i.Refresh(ctx); err != nil {
				i.Logger.Sugar().Errorf("Scheduled feed refresh failed: %v", err)
			}
		}
	}
}
