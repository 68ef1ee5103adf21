package task

import (
	"time"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/logger"
	"github.com/blues/ivp/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// DeadlineJob 募资截止任务，将超过截止时间的募资中产品标记为已结束
type DeadlineJob struct {
	db     *gorm.DB
	cache  cache.ResultCache
	config *config.Config
}

// NewDeadlineJob 创建截止任务
func NewDeadlineJob(db *gorm.DB, rc cache.ResultCache, cfg *config.Config) *DeadlineJob {
	return &DeadlineJob{
		db:     db,
		cache:  rc,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *DeadlineJob) GetName() string {
	return "funding_deadline"
}

// GetSchedule 获取调度配置
func (j *DeadlineJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *DeadlineJob) Execute() {
	logger.Info("Starting funding deadline task")

	result := j.db.Model(&model.ProductModel{}).
		Where("funding_status = ?", model.FundingStatusActive).
		Where("funding_deadline IS NOT NULL AND funding_deadline <= ?", time.Now()).
		UpdateColumn("funding_status", model.FundingStatusCompleted)
	if result.Error != nil {
		logger.Error("Failed to close expired fundings: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		j.cache.InvalidateAll()
		logger.Info("Closed %d expired fundings", result.RowsAffected)
	}

	logger.Info("Funding deadline task completed")
}
