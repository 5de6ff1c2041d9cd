package db

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"chatdb/pkg/models"
)

const tablesKey = "\x00tables"

// CachedProvider 테이블 목록과 테이블 정보를 TTL 동안 캐시
type CachedProvider struct {
	Provider
	cache *cache.Cache
}

// NewCachedProvider ttl 이 0 이하면 캐시 없이 그대로 반환
func NewCachedProvider(p Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return p
	}
	return &CachedProvider{
		Provider: p,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) ListTables(ctx context.Context) ([]string, error) {
	if v, ok := c.cache.Get(tablesKey); ok {
		return v.([]string), nil
	}
	tables, err := c.Provider.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(tablesKey, tables)
	return tables, nil
}

func (c *CachedProvider) DescribeTable(ctx context.Context, name string) (*models.Table, error) {
	if v, ok := c.cache.Get(name); ok {
		return v.(*models.Table), nil
	}
	table, err := c.Provider.DescribeTable(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(name, table)
	return table, nil
}

// Invalidate 캐시 비우기
func (c *CachedProvider) Invalidate() {
	c.cache.Flush()
}
