// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
)

// # OAuth State Repository

// RedisStateRepository implements StateRepository using Redis.
//
// Entries are written with a TTL so abandoned sign-in flows evaporate on
// their own; Consume removes the entry explicitly so a state value can
// never authorize two callbacks.
type RedisStateRepository struct {
	client *redis.Client
}

// NewStateRepository creates a new Redis-backed StateRepository.
func NewStateRepository(client *redis.Client) *RedisStateRepository {
	return &RedisStateRepository{client: client}
}

/*
Set stores an OAuth state entry with its TTL.

Parameters:
  - context: context.Context
  - state: string
  - entry: StateEntry
  - ttl: time.Duration

Returns:
  - error: Serialization or storage failures
*/
func (repository *RedisStateRepository) Set(context context.Context, state string, entry StateEntry, ttl time.Duration) error {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixOAuthState, state)

	// Serialize the entry
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis_oauth_state_marshal_failed: %w", err)
	}

	// Set the entry with TTL
	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_oauth_state_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Consume retrieves and deletes the entry for a given state value.

Description: Returns apperr.NotFound if the state is absent, expired, or has
already been consumed by a previous callback.

Parameters:
  - context: context.Context
  - state: string

Returns:
  - *StateEntry: The stored entry
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisStateRepository) Consume(context context.Context, state string) (*StateEntry, error) {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixOAuthState, state)

	// GetDel makes retrieval and invalidation a single round trip.
	payload, err := repository.client.GetDel(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Sign-in state")
		}
		return nil, fmt.Errorf("redis_oauth_state_get_failed: %w", err)
	}

	// Deserialize the entry
	entry := &StateEntry{}
	if err := json.Unmarshal([]byte(payload), entry); err != nil {
		return nil, fmt.Errorf("redis_oauth_state_unmarshal_failed: %w", err)
	}

	// Return the entry
	return entry, nil
}
