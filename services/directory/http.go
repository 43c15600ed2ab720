package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookline/models"

	"github.com/go-redis/redis/v8"
)

const cacheTTL = 10 * time.Minute

// HTTPDirectory looks display data up from the external identity service and
// caches responses in Redis.
type HTTPDirectory struct {
	BaseURL string
	Client  *http.Client
	Cache   *redis.Client
}

// NewHTTPDirectory builds a directory client against the given base URL.
func NewHTTPDirectory(baseURL string, cache *redis.Client) *HTTPDirectory {
	return &HTTPDirectory{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
		Cache:   cache,
	}
}

func cacheKey(userID string) string {
	return "directory:display:" + userID
}

// GetDisplayInfo resolves a user's display name and avatar.
func (d *HTTPDirectory) GetDisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error) {
	var info models.DisplayInfo

	if d.Cache != nil {
		if cached, err := d.Cache.Get(ctx, cacheKey(userID)).Result(); err == nil {
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return info, nil
			}
		}
	}

	url := fmt.Sprintf("%s/api/users/%s/display", d.BaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return info, fmt.Errorf("directory: failed to build request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return info, fmt.Errorf("directory: lookup for %s failed: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("directory: lookup for %s returned %s", userID, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("directory: failed to decode response for %s: %w", userID, err)
	}

	if d.Cache != nil {
		if data, err := json.Marshal(info); err == nil {
			_ = d.Cache.Set(ctx, cacheKey(userID), data, cacheTTL).Err()
		}
	}
	return info, nil
}
