package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mediguide-backend/internal/models"
)

const drugSearchLimit = 10

type labelSearcher interface {
	SearchLabels(ctx context.Context, term string, limit int) ([]models.DrugSuggestion, error)
}

// DrugService forwards search terms to the drug-label API and reshapes the
// results into a simplified suggestion list. Lookups are cached in Redis for
// a short TTL when a cache client is configured; a nil client disables
// caching entirely.
type DrugService struct {
	labels   labelSearcher
	cache    *redis.Client
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewDrugService(labels labelSearcher, cache *redis.Client, cacheTTL time.Duration, log *slog.Logger) *DrugService {
	return &DrugService{labels: labels, cache: cache, cacheTTL: cacheTTL, log: log}
}

// Search returns suggestions whose name contains the query substring,
// case-insensitively, de-duplicated by name.
func (s *DrugService) Search(ctx context.Context, query string) ([]models.DrugSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	cacheKey := "drug_search:" + strings.ToLower(query)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	results, err := s.labels.SearchLabels(ctx, query, drugSearchLimit)
	if err != nil {
		return nil, err
	}

	suggestions := filterSuggestions(results, query)
	s.cacheSet(ctx, cacheKey, suggestions)
	return suggestions, nil
}

func filterSuggestions(results []models.DrugSuggestion, query string) []models.DrugSuggestion {
	lowered := strings.ToLower(query)
	seen := make(map[string]bool)
	filtered := make([]models.DrugSuggestion, 0, len(results))

	for _, sug := range results {
		key := strings.ToLower(sug.Name)
		if seen[key] {
			continue
		}
		if !strings.Contains(key, lowered) {
			continue
		}
		seen[key] = true
		filtered = append(filtered, sug)
	}

	return filtered
}

func (s *DrugService) cacheGet(ctx context.Context, key string) ([]models.DrugSuggestion, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var suggestions []models.DrugSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, false
	}
	return suggestions, true
}

func (s *DrugService) cacheSet(ctx context.Context, key string, suggestions []models.DrugSuggestion) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("failed to cache drug search", "key", key, "error", err)
	}
}
