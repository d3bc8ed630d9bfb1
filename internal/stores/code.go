package stores

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"context"

	"github.com/redis/go-redis/v9"
)

const (
	codeRecordVersionV1 = 1

	// version(1) + attempts(2) + createdAt(8)
	codeRecordHeaderSize = 11
)

var (
	ErrCodeNotFound         = errors.New("code record not found")
	ErrCodeRedisUnavailable = errors.New("code store redis unavailable")
)

// incrementAttemptsLua atomically bumps the attempt counter of a code record
// while keeping its remaining lifetime intact.
// KEYS[1] = record key
//
// Record layout: version(1) attempts(2 big-endian) createdAt(8 big-endian) code(rest).
// The script rewrites only the attempts bytes and re-SETs the record with its
// live PTTL, so the expiry clock is neither reset nor extended.
//
// Returns:
//
//	new attempt count on success
//	error string: "not_found" (missing, wrong version, or already expiring)
var incrementAttemptsLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

local version = string.byte(data, 1)
if version ~= 1 then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

local a0 = string.byte(data, 2)
local a1 = string.byte(data, 3)
local attempts = a0 * 256 + a1 + 1

local ttlMs = redis.call('PTTL', KEYS[1])
if ttlMs <= 0 then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

local newData = string.sub(data, 1, 1) ..
  string.char(math.floor(attempts / 256), attempts % 256) ..
  string.sub(data, 4)
redis.call('SET', KEYS[1], newData, 'PX', ttlMs)
return attempts
`)

// CodeRecord is one outstanding verification challenge for an identity.
type CodeRecord struct {
	Code      string
	Attempts  uint16
	CreatedAt int64
}

// CodeStore persists at most one CodeRecord per identity under a bounded
// lifetime. Save overwrites unconditionally: issuing a new code is the
// explicit invalidation of any previous one.
type CodeStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewCodeStore(redisClient redis.UniversalClient, prefix string) *CodeStore {
	if prefix == "" {
		prefix = "vc"
	}
	return &CodeStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *CodeStore) key(identity string) string {
	return s.prefix + ":" + identity
}

func (s *CodeStore) Save(ctx context.Context, identity, code string, ttl time.Duration) error {
	encoded, err := encodeCodeRecord(&CodeRecord{
		Code:      code,
		Attempts:  0,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(identity), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}

	return nil
}

func (s *CodeStore) Get(ctx context.Context, identity string) (*CodeRecord, error) {
	data, err := s.redis.Get(ctx, s.key(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}

	record, decErr := decodeCodeRecord([]byte(data))
	if decErr != nil {
		// Unreadable records are unverifiable; drop them.
		_ = s.redis.Del(ctx, s.key(identity)).Err()
		return nil, ErrCodeNotFound
	}

	return record, nil
}

// IncrementAttempts records one failed comparison. The new count is returned;
// the record's remaining TTL is preserved exactly (single scripted round trip).
func (s *CodeStore) IncrementAttempts(ctx context.Context, identity string) (int, error) {
	result, err := incrementAttemptsLua.Run(ctx, s.redis, []string{s.key(identity)}).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return 0, ErrCodeNotFound
		}
		return 0, fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}

	count, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected lua result type", ErrCodeRedisUnavailable)
	}

	return int(count), nil
}

func (s *CodeStore) Remove(ctx context.Context, identity string) error {
	if err := s.redis.Del(ctx, s.key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}
	return nil
}

func encodeCodeRecord(record *CodeRecord) ([]byte, error) {
	if record.Code == "" {
		return nil, errors.New("code record requires a code")
	}

	var buf bytes.Buffer

	buf.WriteByte(codeRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	buf.WriteString(record.Code)

	return buf.Bytes(), nil
}

func decodeCodeRecord(data []byte) (*CodeRecord, error) {
	if len(data) <= codeRecordHeaderSize {
		return nil, errors.New("code record truncated")
	}
	if data[0] != codeRecordVersionV1 {
		return nil, errors.New("invalid code record version")
	}

	return &CodeRecord{
		Attempts:  binary.BigEndian.Uint16(data[1:3]),
		CreatedAt: int64(binary.BigEndian.Uint64(data[3:11])),
		Code:      string(data[codeRecordHeaderSize:]),
	}, nil
}
