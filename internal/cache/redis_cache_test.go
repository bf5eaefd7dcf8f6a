package cache_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/cache"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/config"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCacheTest(t *testing.T) (cache.Cache, redismock.ClientMock, *config.CacheConfig) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	cfg := &config.CacheConfig{
		DefaultTTL: 10 * time.Minute,
	}
	redisCache := cache.NewRedisCache(client, cfg)
	require.NotNil(t, redisCache, "NewRedisCache should return a non-nil Cache instance")

	return redisCache, mock, cfg
}

func TestGet(t *testing.T) {
	ctx := t.Context()
	product := models.Product{ID: uuid.New(), Name: "Crewneck Tee", Price: 10.0}
	key := cache.Key(cache.ProductKeyPrefix, product.ID.String())
	jsonData, err := json.Marshal(product)
	require.NoError(t, err)

	t.Run("Success - Key Found", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)

		var result models.Product

		mock.ExpectGet(key).SetVal(string(jsonData))

		// Act
		found, err := redisCache.Get(ctx, key, &result)

		// Assert
		require.NoError(t, err)
		assert.True(t, found, "Get should return found=true when key exists")
		assert.Equal(t, product.ID, result.ID)
		assert.Equal(t, product.Name, result.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Cache Miss", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)

		var result models.Product

		mock.ExpectGet(key).SetErr(redis.Nil)

		// Act
		found, err := redisCache.Get(ctx, key, &result)

		// Assert
		require.NoError(t, err, "A miss is not an error")
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)

		var result models.Product

		expectedErr := errors.New("redis connection error")

		mock.ExpectGet(key).SetErr(expectedErr)

		// Act
		found, err := redisCache.Get(ctx, key, &result)

		// Assert
		require.Error(t, err)
		assert.False(t, found)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Corrupt Payload", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)

		var result models.Product

		mock.ExpectGet(key).SetVal(`{"price": "not_a_float"}`)

		// Act
		found, err := redisCache.Get(ctx, key, &result)

		// Assert
		require.Error(t, err)
		assert.False(t, found)
		assert.Contains(t, err.Error(), "failed to unmarshal cache data for key "+key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSet(t *testing.T) {
	ctx := t.Context()
	product := models.Product{ID: uuid.New(), Name: "V-Neck Tee", Price: 12.5}
	key := cache.Key(cache.ProductKeyPrefix, product.ID.String())
	jsonData, err := json.Marshal(product)
	require.NoError(t, err)

	t.Run("Success - Specific TTL", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)
		specificTTL := 5 * time.Minute

		mock.ExpectSet(key, jsonData, specificTTL).SetVal("OK")

		// Act
		err := redisCache.Set(ctx, key, product, specificTTL)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Zero TTL Falls Back To Default", func(t *testing.T) {
		// Arrange
		redisCache, mock, cfg := setupCacheTest(t)

		mock.ExpectSet(key, jsonData, cfg.DefaultTTL).SetVal("OK")

		// Act
		err := redisCache.Set(ctx, key, product, 0)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unmarshallable Value", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)

		// Act
		err := redisCache.Set(ctx, key, make(chan int), 5*time.Minute)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to marshal value for key "+key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)
		expectedErr := errors.New("redis SET failed")

		mock.ExpectSet(key, jsonData, 5*time.Minute).SetErr(expectedErr)

		// Act
		err := redisCache.Set(ctx, key, product, 5*time.Minute)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	ctx := t.Context()
	key := cache.Key(cache.ProductKeyPrefix, uuid.NewString())

	t.Run("Success", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)

		mock.ExpectDel(key).SetVal(1)

		// Act
		err := redisCache.Delete(ctx, key)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setupCacheTest(t)
		expectedErr := errors.New("redis DEL failed")

		mock.ExpectDel(key).SetErr(expectedErr)

		// Act
		err := redisCache.Delete(ctx, key)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestKey(t *testing.T) {
	id := uuid.NewString()

	assert.Equal(t, "product:"+id, cache.Key(cache.ProductKeyPrefix, id))
	assert.Equal(t, "variant:"+id, cache.Key(cache.VariantKeyPrefix, id))
	assert.Equal(t, "user:"+id, cache.Key(cache.UserKeyPrefix, id))
	assert.Equal(t, "order:"+id, cache.Key(cache.OrderKeyPrefix, id))
	assert.Equal(t, "cart:"+id, cache.Key(cache.CartKeyPrefix, id))
}
