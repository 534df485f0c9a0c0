package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"math/rand"

	"github.com/redis/go-redis/v9"

	apperr "funpay/lotworker/pkg/errors"
)

// RedisPublisher implements Publisher using Redis streams. Each lot
// batch is appended to one of streamCount sharded streams under the
// configured prefix.
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	// A shard count below one would make stream selection panic
	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Publish appends a base64-encoded lot batch to a random stream shard,
// keyed by the lot node id
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encodedBatch := base64.StdEncoding.EncodeToString(message)

	// random shard by streamCount
	// if streamCount is 10, stream name will be lots:0 ~ lots:9
	stream := p.streamPrefix + ":" + strconv.Itoa(rand.Intn(p.streamCount))

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encodedBatch,
		},
	}).Err()
	if err != nil {
		return apperr.NewPublisher(key, fmt.Sprintf("failed to append lot batch to %s", stream), err)
	}

	return nil
}

// TrimStreams trims all lot streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return apperr.NewPublisher("", "failed to list lot streams", err)
	}

	for _, stream := range streams {
		err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err()
		if err != nil {
			return apperr.NewPublisher("", fmt.Sprintf("failed to trim %s", stream), err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
