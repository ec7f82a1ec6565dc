package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/logger"
)

var newError = commons.NewTaggedWrapper("Cache")

// Cache stores JSON-encodable values with a time to live.
type Cache interface {
	// Get decodes the value of key into v. Returns false on a miss.
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	// Set stores v under key for ttl.
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Memoize returns the cached value of key, or calls fn and caches its result.
// Errors of fn are returned as is and never cached.
// A failing cache only costs a call to fn; it is logged, not returned.
func Memoize[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var result T
	ok, err := c.Get(ctx, key, &result)
	if err != nil {
		logger.Warn("[Cache] %s", err.Error())
	}
	if ok {
		return result, nil
	}

	result, err = fn()
	if err != nil {
		return result, err
	}

	if err := c.Set(ctx, key, result, ttl); err != nil {
		logger.Warn("[Cache] %s", err.Error())
	}
	return result, nil
}

func encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, newError(err, "encode")
	}
	return data, nil
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return newError(err, "decode")
	}
	return nil
}
