package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenRecordVersionV1 = 1

var (
	ErrTokenNotFound         = errors.New("access token record not found")
	ErrTokenRedisUnavailable = errors.New("token store redis unavailable")
)

// TokenRecord is the proof of a prior successful verification, keyed by the
// opaque token value rather than the identity.
type TokenRecord struct {
	Identity  string
	CreatedAt int64
}

// TokenStore persists access tokens with a fixed lifetime. Lookups never
// renew the TTL: tokens are fixed-lifetime credentials with no sliding
// expiry.
type TokenStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewTokenStore(redisClient redis.UniversalClient, prefix string) *TokenStore {
	if prefix == "" {
		prefix = "vt"
	}
	return &TokenStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *TokenStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *TokenStore) Save(ctx context.Context, token, identity string, ttl time.Duration) error {
	encoded, err := encodeTokenRecord(&TokenRecord{
		Identity:  identity,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	return nil
}

func (s *TokenStore) Lookup(ctx context.Context, token string) (*TokenRecord, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	record, decErr := decodeTokenRecord([]byte(data))
	if decErr != nil {
		_ = s.redis.Del(ctx, s.key(token)).Err()
		return nil, ErrTokenNotFound
	}

	return record, nil
}

func encodeTokenRecord(record *TokenRecord) ([]byte, error) {
	if record.Identity == "" {
		return nil, errors.New("token record requires an identity")
	}

	var buf bytes.Buffer

	buf.WriteByte(tokenRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	buf.WriteString(record.Identity)

	return buf.Bytes(), nil
}

func decodeTokenRecord(data []byte) (*TokenRecord, error) {
	// version(1) + createdAt(8)
	if len(data) <= 9 {
		return nil, errors.New("token record truncated")
	}
	if data[0] != tokenRecordVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	return &TokenRecord{
		CreatedAt: int64(binary.BigEndian.Uint64(data[1:9])),
		Identity:  string(data[9:]),
	}, nil
}
