package verification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"venuebook/models"

	"github.com/go-redis/redis/v8"
)

// consumeScript checks and consumes a code in one step. Checks run in the
// same order as the memory store so both report identical errors.
var consumeScript = redis.NewScript(`
local rec = redis.call('HMGET', KEYS[1], 'id', 'digest', 'expires_at', 'consumed')
if not rec[1] or rec[4] == '1' then
	return 'notfound'
end
if rec[1] ~= ARGV[1] then
	return 'stale'
end
if tonumber(ARGV[3]) > tonumber(rec[3]) then
	return 'expired'
end
if rec[2] ~= ARGV[2] then
	return 'mismatch'
end
redis.call('HSET', KEYS[1], 'consumed', '1')
return 'ok'
`)

// sweepScript deletes a code if it is consumed or expired before ARGV[1].
var sweepScript = redis.NewScript(`
local rec = redis.call('HMGET', KEYS[1], 'expires_at', 'consumed')
if rec[2] == '1' or (rec[1] and tonumber(rec[1]) < tonumber(ARGV[1])) then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisCodeStore keeps each code in a hash under vcode:<purpose>:<subject>.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) (*RedisCodeStore, error) {
	if client == nil {
		return nil, fmt.Errorf("verification store initialization error: redis client is nil")
	}
	return &RedisCodeStore{client: client}, nil
}

func (s *RedisCodeStore) Put(ctx context.Context, code *models.VerificationCode, keep time.Duration) error {
	key := codeKey(code.SubjectID, code.Purpose)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"id", code.ID,
			"subject_id", code.SubjectID,
			"purpose", string(code.Purpose),
			"salt", code.Salt,
			"digest", code.Digest,
			"issued_at", code.IssuedAt.UnixMilli(),
			"expires_at", code.ExpiresAt.UnixMilli(),
			"consumed", "0",
		)
		pipe.PExpire(ctx, key, keep)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, subjectID string, purpose models.CodePurpose) (*models.VerificationCode, error) {
	fields, err := s.client.HGetAll(ctx, codeKey(subjectID, purpose)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load verification code: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("verification code for %s: %w", subjectID, models.ErrNotFound)
	}

	issued, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt verification code issued_at: %w", err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt verification code expires_at: %w", err)
	}
	return &models.VerificationCode{
		ID:        fields["id"],
		SubjectID: subjectID,
		Purpose:   purpose,
		Salt:      fields["salt"],
		Digest:    fields["digest"],
		IssuedAt:  time.UnixMilli(issued),
		ExpiresAt: time.UnixMilli(expires),
		Consumed:  fields["consumed"] == "1",
	}, nil
}

func (s *RedisCodeStore) Consume(ctx context.Context, subjectID string, purpose models.CodePurpose, recordID, digest string, now time.Time) error {
	keys := []string{codeKey(subjectID, purpose)}
	res, err := consumeScript.Run(ctx, s.client, keys, recordID, digest, now.UnixMilli()).Text()
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	switch res {
	case "ok":
		return nil
	case "notfound":
		return fmt.Errorf("verification code for %s: %w", subjectID, models.ErrNotFound)
	case "stale":
		return errStale
	case "expired":
		return models.ErrExpired
	case "mismatch":
		return models.ErrMismatch
	}
	return fmt.Errorf("unexpected consume result %q", res)
}

// Sweep scans every code key and deletes the dead ones. Each delete re-checks
// the record inside a script so a code reissued mid-scan survives.
func (s *RedisCodeStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, "vcode:*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan verification codes: %w", err)
		}
		for _, key := range keys {
			n, err := sweepScript.Run(ctx, s.client, []string{key}, cutoff.UnixMilli()).Int()
			if err != nil && !errors.Is(err, redis.Nil) {
				return removed, fmt.Errorf("failed to sweep %s: %w", key, err)
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
