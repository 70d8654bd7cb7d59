// Package businessflow contains the core business logic for result ingestion and presentation
package businessflow

import (
	"time"

	"github.com/kbtwatch/tracker/app/dto"
	"github.com/kbtwatch/tracker/config"
	"github.com/kbtwatch/tracker/models"
)

// ToResultDTO converts a stored result to its presentation shape
func ToResultDTO(result models.Result) dto.ResultDTO {
	return dto.ResultDTO{
		Period:    result.Period,
		Number:    result.Number,
		Color:     result.Color,
		CreatedAt: result.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResultDTOs converts a repository result set, never returning nil so the
// JSON encoding stays a [] instead of null
func ToResultDTOs(results []*models.Result) []dto.ResultDTO {
	out := make([]dto.ResultDTO, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, ToResultDTO(*r))
	}
	return out
}

// redisKey prefixes a cache key with the configured namespace
func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}
