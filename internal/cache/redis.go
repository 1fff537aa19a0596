package cache

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/linkgraph/internal/model"
	redis "github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = time.Hour
)

func documentKey(collection, id string) string {
	return "document:" + collection + ":" + id
}

var _ DocumentCache = (*RedisDocumentCache)(nil)

type RedisDocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to the redis server at addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2, // Connection protocol
	})
}

func NewRedisDocumentCache(client *redis.Client, ttl time.Duration) *RedisDocumentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisDocumentCache{client: client, ttl: ttl}
}

func (r *RedisDocumentCache) GetDocument(ctx context.Context, collection, id string) (*model.Document, error) {
	res := r.client.Get(ctx, documentKey(collection, id))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	doc := &model.Document{}
	if err := doc.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *RedisDocumentCache) SetDocument(ctx context.Context, doc *model.Document) error {
	return r.client.Set(ctx, documentKey(doc.Collection, doc.ID), doc, r.ttl).Err()
}

func (r *RedisDocumentCache) DeleteDocument(ctx context.Context, collection, id string) error {
	return r.client.Del(ctx, documentKey(collection, id)).Err()
}
