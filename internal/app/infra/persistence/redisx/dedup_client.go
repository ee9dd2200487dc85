package redisx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fields stripped before hashing a request body: they change on every retry
// of an otherwise identical request.
var volatileFields = map[string]struct{}{
	"operation_id": {},
	"timestamp":    {},
	"request_id":   {},
}

// DedupClient guards mutating endpoints against double submission with a
// short-lived SETNX lock keyed by a hash of the normalized request body.
type DedupClient struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

// NewDedupClient connects to Redis and verifies the connection.
func NewDedupClient(addr, password string, db int, lockTTL time.Duration) (*DedupClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &DedupClient{rdb: rdb, lockTTL: lockTTL}, nil
}

// AcquireRequestLock tries to claim the dedup slot for a request body.
// acquired=false means an identical request is already in flight. A Redis
// failure is reported but callers treat it as acquired: dedup is a guard,
// not a gate.
func (c *DedupClient) AcquireRequestLock(ctx context.Context, path string, body []byte) (acquired bool, key string, err error) {
	key = "dedup:" + path + ":" + HashBody(body)
	ok, err := c.rdb.SetNX(ctx, key, 1, c.lockTTL).Result()
	if err != nil {
		return true, key, err
	}
	return ok, key, nil
}

// ReleaseRequestLock frees the dedup slot early, after the request finished.
func (c *DedupClient) ReleaseRequestLock(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// MarkEmptySeen records that a supply looked empty this pass and reports how
// many consecutive passes have seen it empty. The counter expires on its own
// so a supply that stops being checked is forgotten.
func (c *DedupClient) MarkEmptySeen(ctx context.Context, supplyID string, ttl time.Duration) (int64, error) {
	key := "empty_supply:" + supplyID
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return count, err
	}
	return count, nil
}

// ClearEmptySeen resets the consecutive-empty counter for a supply.
func (c *DedupClient) ClearEmptySeen(ctx context.Context, supplyID string) error {
	return c.rdb.Del(ctx, "empty_supply:"+supplyID).Err()
}

// Close closes the underlying connection.
func (c *DedupClient) Close() error {
	return c.rdb.Close()
}

// HashBody produces a stable hash of a JSON body with volatile fields
// removed and keys order-normalized. Non-JSON bodies hash as raw bytes.
func HashBody(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		sum := sha256.Sum256(body)
		return hex.EncodeToString(sum[:])
	}

	for field := range volatileFields {
		delete(payload, field)
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v, _ := json.Marshal(payload[k])
		h.Write([]byte(k))
		h.Write(v)
	}
	return hex.EncodeToString(h.Sum(nil))
}
