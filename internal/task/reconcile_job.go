package task

import (
	"math"
	"time"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/logger"
	"github.com/blues/ivp/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ReconcileJob 募资计数对账任务。产品上的current_funding和total_investors
// 平时只通过支付完成时的原子自增维护，这里定期从认购记录重算，
// 修正漂移的计数。current_funding修正时限制不超过目标预算。
type ReconcileJob struct {
	db     *gorm.DB
	cache  cache.ResultCache
	config *config.Config
}

// NewReconcileJob 创建对账任务
func NewReconcileJob(db *gorm.DB, rc cache.ResultCache, cfg *config.Config) *ReconcileJob {
	return &ReconcileJob{
		db:     db,
		cache:  rc,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *ReconcileJob) GetName() string {
	return "funding_reconciler"
}

// GetSchedule 获取调度配置
func (j *ReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ReconcileJob) Execute() {
	logger.Info("Starting funding reconcile task")

	var rows []struct {
		Id              int64
		TotalBudget     float64
		CurrentFunding  float64
		TotalInvestors  int64
		ActualFunding   float64
		ActualInvestors int64
	}

	err := j.db.Raw(`
		SELECT
			p.id,
			p.total_budget,
			p.current_funding,
			p.total_investors,
			COALESCE(s.actual_funding, 0) AS actual_funding,
			COALESCE(s.actual_investors, 0) AS actual_investors
		FROM product p
		LEFT JOIN (
			SELECT
				product_id,
				SUM(investment_amount) AS actual_funding,
				COUNT(*) AS actual_investors
			FROM pledge
			WHERE payment_status = ?
			GROUP BY product_id
		) s ON p.id = s.product_id
	`, model.PaymentStatusCompleted).Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to load funding totals for reconcile: %v", err)
		return
	}

	fixedCount := 0

	for _, row := range rows {
		// current_funding不允许超过目标预算
		expectedFunding := math.Min(row.ActualFunding, row.TotalBudget)

		if math.Abs(row.CurrentFunding-expectedFunding) < 0.005 &&
			row.TotalInvestors == row.ActualInvestors {
			continue
		}

		err := j.db.Model(&model.ProductModel{}).Where("id = ?", row.Id).
			UpdateColumns(map[string]interface{}{
				"current_funding": expectedFunding,
				"total_investors": row.ActualInvestors,
			}).Error
		if err != nil {
			logger.Error("Failed to reconcile funding for product %d: %v", row.Id, err)
			continue
		}

		logger.Warn("Reconciled funding drift for product %d: funding %.2f -> %.2f, investors %d -> %d",
			row.Id, row.CurrentFunding, expectedFunding, row.TotalInvestors, row.ActualInvestors)
		fixedCount++
	}

	if fixedCount > 0 {
		j.cache.InvalidateAll()
	}

	logger.Info("Funding reconcile task completed. Fixed %d products", fixedCount)
}
