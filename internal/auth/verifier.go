package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken means the identity service rejected the credential.
var ErrInvalidToken = errors.New("invalid token")

// Verifier resolves a bearer token to a user identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Client verifies tokens against an external identity-verification service
// and caches positive results in Redis keyed by the token's sha256. Cache
// misses and cache failures fall through to direct verification.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Cache      *redis.Client
	CacheTTL   time.Duration
}

func NewClient(baseURL, apiKey string, cache *redis.Client, cacheTTL time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Cache:    cache,
		CacheTTL: cacheTTL,
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UID string `json:"uid"`
}

func (c *Client) Verify(ctx context.Context, token string) (string, error) {
	key := cacheKey(token)
	if c.Cache != nil {
		if uid, err := c.Cache.Get(ctx, key).Result(); err == nil && uid != "" {
			return uid, nil
		}
	}

	jsonBody, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return "", fmt.Errorf("failed to marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/verify", c.BaseURL), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read verify response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidToken
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("identity service error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var result verifyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal verify response: %w", err)
	}
	if result.UID == "" {
		return "", ErrInvalidToken
	}

	if c.Cache != nil {
		_ = c.Cache.Set(ctx, key, result.UID, c.CacheTTL).Err()
	}

	return result.UID, nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "authtoken:" + hex.EncodeToString(sum[:])
}
