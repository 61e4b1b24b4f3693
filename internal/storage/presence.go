package storage

import (
	"context"
	"errors"
	"sort"
)

// presenceKey is the Redis set holding the ids of connected users.
const presenceKey = "presence:online"

var errNoRedis = errors.New("storage: redis is not configured")

// MarkOnline adds the user to the shared online set.
func (s *Service) MarkOnline(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return errNoRedis
	}
	return s.Redis.SAdd(ctx, presenceKey, userID).Err()
}

// MarkOffline removes the user from the shared online set.
func (s *Service) MarkOffline(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return errNoRedis
	}
	return s.Redis.SRem(ctx, presenceKey, userID).Err()
}

// OnlineUsers returns the mirrored online set, sorted.
func (s *Service) OnlineUsers(ctx context.Context) ([]string, error) {
	if s.Redis == nil {
		return nil, errNoRedis
	}
	ids, err := s.Redis.SMembers(ctx, presenceKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// ResetPresence drops the mirrored set. Called on startup: connections do not
// survive a restart, so any leftover entries are stale.
func (s *Service) ResetPresence(ctx context.Context) error {
	if s.Redis == nil {
		return errNoRedis
	}
	return s.Redis.Del(ctx, presenceKey).Err()
}
