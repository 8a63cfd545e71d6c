package shared

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	idempotencyPrefix = "ledger:idem:"
	statePending      = "pending"
	stateDone         = "done"
)

// DefaultPendingTTL bounds how long an unfinished reservation blocks its key.
const DefaultPendingTTL = time.Minute

// IdempotencyStore remembers which request produced which resource id.
// Reservations expire after pendingTTL; completed records after ttl.
type IdempotencyStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return (&IdempotencyStore{client: client, ttl: ttl}).WithPendingTTL(DefaultPendingTTL)
}

// WithPendingTTL sets the lifetime of a reservation, capped at the record ttl.
func (s *IdempotencyStore) WithPendingTTL(d time.Duration) *IdempotencyStore {
	if d <= 0 {
		d = DefaultPendingTTL
	}
	if d > s.ttl {
		d = s.ttl
	}
	s.pendingTTL = d
	return s
}

// Fingerprint hashes a request body so replays can be told apart from key reuse.
func Fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Begin reserves key for a request with fingerprint fp. When the key already
// completed with the same fingerprint it returns the stored id and replay=true.
func (s *IdempotencyStore) Begin(ctx context.Context, key, fp string) (id int64, replay bool, err error) {
	if s == nil {
		return 0, false, errors.New("idempotency store not initialised")
	}
	if key == "" {
		return 0, false, errors.New("idempotency key required")
	}
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, idempotencyPrefix+key, statePending+"|"+fp, s.pendingTTL).Result()
		if err != nil {
			return 0, false, fmt.Errorf("idempotency: reserve: %w", err)
		}
		if ok {
			return 0, false, nil
		}
		raw, err := s.client.Get(ctx, idempotencyPrefix+key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("idempotency: read: %w", err)
		}
		return decodeRecord(raw, fp)
	}
	return 0, false, ErrIdempotencyInFlight
}

// Complete stores the id produced for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key, fp string, id int64) error {
	if s == nil {
		return nil
	}
	value := stateDone + "|" + fp + "|" + strconv.FormatInt(id, 10)
	if err := s.client.Set(ctx, idempotencyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: complete: %w", err)
	}
	return nil
}

// Release removes a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if s == nil {
		return nil
	}
	if err := s.client.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}

func decodeRecord(raw, fp string) (int64, bool, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 2 || parts[1] != fp {
		return 0, false, ErrIdempotencyConflict
	}
	if parts[0] != stateDone || len(parts) != 3 {
		return 0, false, ErrIdempotencyInFlight
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency: corrupt record %q: %w", raw, err)
	}
	return id, true, nil
}
