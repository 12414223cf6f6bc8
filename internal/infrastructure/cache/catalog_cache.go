// Package cache implementa un cache Redis de existencia de catálogo. Es un
// decorador sobre CatalogRepository: un fallo de Redis degrada a consultar la
// base directamente, nunca altera el resultado de la validación.
package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

var _ repository.CatalogRepository = (*CachedCatalog)(nil)

// CachedCatalog decora un CatalogRepository cacheando la membresía de llaves.
// Solo se cachean aciertos: una llave ausente del catálogo puede darse de
// alta en cualquier momento y no debe quedar negada por TTL.
type CachedCatalog struct {
	inner  repository.CatalogRepository
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedCatalog construye el decorador con su cliente Redis.
func NewCachedCatalog(inner repository.CatalogRepository, addr, password string, db int, ttl time.Duration, log *logger.Logger) *CachedCatalog {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &CachedCatalog{inner: inner, client: client, ttl: ttl, log: log}
}

// Ping verifica la conexión a Redis.
func (c *CachedCatalog) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente Redis.
func (c *CachedCatalog) Close() error {
	return c.client.Close()
}

func cacheKey(k entity.ProductBranchKey) string {
	return fmt.Sprintf("catalog:%d:%d", k.ProductID, k.BranchID)
}

// Exists resuelve la membresía primero contra Redis y consulta la base solo
// por las llaves sin acierto, cacheando las que sí existen.
func (c *CachedCatalog) Exists(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]struct{}, error) {
	if len(keys) == 0 {
		return map[entity.ProductBranchKey]struct{}{}, nil
	}

	cacheKeys := make([]string, len(keys))
	for i, k := range keys {
		cacheKeys[i] = cacheKey(k)
	}

	out := make(map[entity.ProductBranchKey]struct{}, len(keys))
	pending := keys
	vals, err := c.client.MGet(ctx, cacheKeys...).Result()
	if err != nil {
		c.log.Warn().Err(err).Msg("cache de catálogo no disponible; consultando la base")
	} else {
		pending = pending[:0:0]
		for i, v := range vals {
			if v == nil {
				pending = append(pending, keys[i])
				continue
			}
			out[keys[i]] = struct{}{}
		}
	}
	if len(pending) == 0 {
		return out, nil
	}

	found, err := c.inner.Exists(ctx, pending)
	if err != nil {
		return nil, err
	}
	for k := range found {
		out[k] = struct{}{}
		if err := c.client.Set(ctx, cacheKey(k), "1", c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Msg("no se pudo cachear llave de catálogo")
		}
	}
	return out, nil
}

// CurrentStock pasa directo a la base: las cantidades cambian con cada lote y
// no se cachean.
func (c *CachedCatalog) CurrentStock(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]int64, error) {
	return c.inner.CurrentStock(ctx, keys)
}
