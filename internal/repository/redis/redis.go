package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agroMarket/domain"

	"github.com/redis/go-redis/v9"
)

// SessionRepository keeps login sessions, and the carts inside them, in Redis.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	// key format: "session:{session_id}"
	return fmt.Sprintf("session:%s", id)
}

// userSessionsKey names the set of session ids opened by one user.
func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user:%d:sessions", userID)
}

func checkoutKey(token string) string {
	return fmt.Sprintf("checkout:token:%s", token)
}

// Create stores a new session and indexes it under its user so it can be revoked later.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := r.write(ctx, session, r.ttl); err != nil {
		return err
	}

	key := userSessionsKey(session.UserID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, session.ID)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}

	return nil
}

// Save rewrites the session while keeping whatever lifetime it has left.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	ttl, err := r.client.TTL(ctx, sessionKey(session.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read session ttl: %w", err)
	}

	// -2 means the key is gone, the user has to log in again
	if ttl == -2 {
		return domain.ErrSessionNotFound
	}
	if ttl <= 0 {
		ttl = r.ttl
	}

	return r.write(ctx, session, ttl)
}

func (r *SessionRepository) write(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	val, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteUserSessions logs a user out everywhere by removing every session they opened.
func (r *SessionRepository) DeleteUserSessions(ctx context.Context, userID uint) error {
	key := userSessionsKey(userID)

	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, key)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

// ClaimCheckoutToken marks a checkout form token as used. It returns false when the
// token was already claimed.
func (r *SessionRepository) ClaimCheckoutToken(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, checkoutKey(token), "claimed", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim checkout token: %w", err)
	}

	return ok, nil
}

// ReleaseCheckoutToken frees a token after a failed checkout so the customer can retry.
func (r *SessionRepository) ReleaseCheckoutToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, checkoutKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to release checkout token: %w", err)
	}

	return nil
}
