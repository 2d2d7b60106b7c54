package service

import (
	"context"
	"encoding/json"
	"gitgud_server/internal/domain/model"
	"gitgud_server/internal/domain/repository"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardCacheKey = "leaderboard:v1"

// LeaderboardService reads the ranked standings. Ranking itself is computed
// by the database; this layer only caches the response in Redis since the
// query aggregates over every recorded solve.
type LeaderboardService struct {
	leaderboardRepo repository.LeaderboardRepository
	rdb             *redis.Client
	cacheTTL        time.Duration
}

func NewLeaderboardService(leaderboardRepo repository.LeaderboardRepository, rdb *redis.Client, cacheTTL time.Duration) *LeaderboardService {
	return &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		rdb:             rdb,
		cacheTTL:        cacheTTL,
	}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, leaderboardCacheKey).Bytes()
		if err == nil {
			var entries []model.LeaderboardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
			// Corrupt cache entry: fall through to the database read.
			log.Printf("WARN: discarding unreadable leaderboard cache entry")
		} else if err != redis.Nil {
			log.Printf("WARN: leaderboard cache read failed: %v", err)
		}
	}

	entries, err := s.leaderboardRepo.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, leaderboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("WARN: leaderboard cache write failed: %v", err)
			}
		}
	}
	return entries, nil
}
