package logic

import (
	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"gorm.io/gorm"
)

// AnalyticsLogic 全局募资分析，在聚合层之上加结果缓存
type AnalyticsLogic struct {
	stats    *StatsLogic
	cache    cache.ResultCache
	cacheCfg config.CacheConfig
}

// NewAnalyticsLogic 创建分析业务逻辑
func NewAnalyticsLogic(db *gorm.DB, rc cache.ResultCache, cfg *config.Config) *AnalyticsLogic {
	return &AnalyticsLogic{
		stats:    NewStatsLogic(db),
		cache:    rc,
		cacheCfg: cfg.Cache,
	}
}

// GetFundingAnalytics 获取全局募资分析，命中缓存时直接返回。
// 聚合失败不会污染缓存：只有成功的结果才写入。
func (a *AnalyticsLogic) GetFundingAnalytics() (*GlobalAnalytics, error) {
	key := cache.Key("analytics", "funding")
	if cached, ok := a.cache.Get(key); ok {
		if analytics, ok := cached.(*GlobalAnalytics); ok {
			return analytics, nil
		}
	}

	analytics, err := a.stats.ComputeGlobalAnalytics()
	if err != nil {
		return nil, err
	}

	a.cache.Set(key, analytics, ttlSeconds(a.cacheCfg.AnalyticsTTL, 300))

	return analytics, nil
}
