package cache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ResultCache 查询结果缓存。进程内单实例，启动时创建并注入到各个组件，
// 任何写操作成功后整体失效。缓存层只做加速，失败时调用方直接回源计算。
type ResultCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	InvalidateAll()
}

// MemoryCache 基于go-cache的进程内实现
type MemoryCache struct {
	store *gocache.Cache
}

// New 创建结果缓存，过期条目惰性失效，后台每2分钟清理一次
func New() *MemoryCache {
	return &MemoryCache{
		store: gocache.New(10*time.Minute, 2*time.Minute),
	}
}

// Get 读取缓存，过期条目视为未命中
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set 写入缓存并指定过期时间
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// InvalidateAll 清空全部缓存。写操作频率远低于读操作，粗粒度失效足够；
// 与并发Set不需要加锁，失效后的Set写入的是新数据，结果仍然正确。
func (c *MemoryCache) InvalidateAll() {
	c.store.Flush()
}

// Key 构造缓存键：操作名加上按固定顺序排列的全部查询参数。
// 同一操作的调用方必须以相同顺序传参，语义相同的请求才会命中同一条目。
func Key(op string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%v", p))
	}
	return strings.Join(parts, ":")
}
