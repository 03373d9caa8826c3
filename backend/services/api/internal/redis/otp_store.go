package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// otpEntry is the value stored per identifier.
type otpEntry struct {
	Hash     string    `json:"hash"`
	IssuedAt time.Time `json:"issued_at"`
	Attempts int       `json:"attempts"`
}

// consumeRetries bounds WATCH retries so a contended mismatch is still counted.
const consumeRetries = 3

// OTPStore keeps hashed one-time codes in redis with native expiry.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore returns redis-backed store.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) key(k string) string {
	return fmt.Sprintf("voltstart:%s", k)
}

// Save stores hash under key, replacing any previous code.
func (s *OTPStore) Save(ctx context.Context, key, hash string, ttl time.Duration) error {
	data, err := json.Marshal(otpEntry{Hash: hash, IssuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, ttl).Err()
}

// Consume deletes the entry when match accepts it. A rejection rewrites the entry with
// one more attempt, keeping its TTL, or deletes it once maxAttempts is reached. WATCH
// makes each read-modify-write one transaction, so two concurrent callers cannot both succeed.
func (s *OTPStore) Consume(ctx context.Context, key string, maxAttempts int, match func(hash string) bool) (bool, error) {
	redisKey := s.key(key)

	for i := 0; i < consumeRetries; i++ {
		consumed := false
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, redisKey).Result()
			if err != nil {
				return err
			}
			var entry otpEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				return err
			}

			matched := match(entry.Hash)
			var data []byte
			if !matched {
				entry.Attempts++
				if maxAttempts <= 0 || entry.Attempts < maxAttempts {
					if data, err = json.Marshal(entry); err != nil {
						return err
					}
				}
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if data != nil {
					pipe.Set(ctx, redisKey, data, redis.KeepTTL)
				} else {
					pipe.Del(ctx, redisKey)
				}
				return nil
			})
			if err != nil {
				return err
			}
			consumed = matched
			return nil
		}, redisKey)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil):
			return false, nil
		case err != nil:
			return false, err
		}
		return consumed, nil
	}
	return false, nil
}
