package logic

import (
	"sort"
	"time"

	"github.com/blues/ivp/internal/model"
	"gorm.io/gorm"
)

// StatsLogic 募资统计聚合。展示路径不信任产品上的冗余计数字段，
// 统一从已完成的认购记录重新聚合，避免计数漂移进入读路径。
type StatsLogic struct {
	db *gorm.DB
}

// NewStatsLogic 创建募资统计聚合
func NewStatsLogic(db *gorm.DB) *StatsLogic {
	return &StatsLogic{db: db}
}

// RecentPledge 最近的认购摘要
type RecentPledge struct {
	InvestorName     string     `json:"investorName"`
	InvestmentAmount float64    `json:"investmentAmount"`
	PaymentDate      *time.Time `json:"paymentDate"`
}

// ProductStats 单个产品的募资统计
type ProductStats struct {
	TotalInvestors int64          `json:"totalInvestors"`
	TotalAmount    float64        `json:"totalAmount"`
	AvgInvestment  float64        `json:"avgInvestment"`
	MinInvestment  float64        `json:"minInvestment"`
	MaxInvestment  float64        `json:"maxInvestment"`
	RecentPledges  []RecentPledge `json:"recentPledges"`
}

// ComputeProductStats 计算单个产品的募资统计，只统计已完成支付的认购。
// 没有已完成认购时返回全零结果，不返回错误。
func (s *StatsLogic) ComputeProductStats(productId int64) (*ProductStats, error) {
	var row struct {
		TotalInvestors int64
		TotalAmount    float64
		AvgInvestment  float64
		MinInvestment  float64
		MaxInvestment  float64
	}

	err := s.db.Model(&model.PledgeModel{}).
		Where("product_id = ? AND payment_status = ?", productId, model.PaymentStatusCompleted).
		Select("COUNT(*) AS total_investors" +
			", COALESCE(SUM(investment_amount), 0) AS total_amount" +
			", COALESCE(AVG(investment_amount), 0) AS avg_investment" +
			", COALESCE(MIN(investment_amount), 0) AS min_investment" +
			", COALESCE(MAX(investment_amount), 0) AS max_investment").
		Scan(&row).Error
	if err != nil {
		return nil, storeErr(err)
	}

	stats := &ProductStats{
		TotalInvestors: row.TotalInvestors,
		TotalAmount:    row.TotalAmount,
		AvgInvestment:  row.AvgInvestment,
		MinInvestment:  row.MinInvestment,
		MaxInvestment:  row.MaxInvestment,
		RecentPledges:  []RecentPledge{},
	}

	if row.TotalInvestors == 0 {
		return stats, nil
	}

	// 最近5条已完成认购
	var recent []RecentPledge
	err = s.db.Model(&model.PledgeModel{}).
		Where("product_id = ? AND payment_status = ?", productId, model.PaymentStatusCompleted).
		Select("investor_name, investment_amount, payment_date").
		Order("payment_date DESC, id DESC").
		Limit(5).
		Scan(&recent).Error
	if err != nil {
		return nil, storeErr(err)
	}
	stats.RecentPledges = recent

	return stats, nil
}

// ListStats 列表视图中每个产品的募资统计
type ListStats struct {
	TotalInvestors    int64   `json:"totalInvestors"`
	ActualFunding     float64 `json:"actualFunding"`
	FundingPercentage float64 `json:"fundingPercentage"`
}

// ComputeListStats 批量计算多个产品的募资统计，单次分组查询完成，
// 避免每个产品一条查询。没有已完成认购的产品返回零值条目。
func (s *StatsLogic) ComputeListStats(productIds []int64) (map[int64]ListStats, error) {
	result := make(map[int64]ListStats, len(productIds))
	if len(productIds) == 0 {
		return result, nil
	}

	var rows []struct {
		ProductId      int64
		TotalBudget    float64
		TotalInvestors int64
		ActualFunding  float64
	}

	err := s.db.Raw(`
		SELECT
			p.id AS product_id,
			p.total_budget,
			COALESCE(s.total_investors, 0) AS total_investors,
			COALESCE(s.actual_funding, 0) AS actual_funding
		FROM product p
		LEFT JOIN (
			SELECT
				product_id,
				COUNT(*) AS total_investors,
				SUM(investment_amount) AS actual_funding
			FROM pledge
			WHERE payment_status = ? AND product_id IN ?
			GROUP BY product_id
		) s ON p.id = s.product_id
		WHERE p.id IN ?
	`, model.PaymentStatusCompleted, productIds, productIds).Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}

	for _, row := range rows {
		result[row.ProductId] = ListStats{
			TotalInvestors:    row.TotalInvestors,
			ActualFunding:     row.ActualFunding,
			FundingPercentage: model.FundingPercentage(row.ActualFunding, row.TotalBudget),
		}
	}

	return result, nil
}

// AnalyticsOverview 产品维度的全局统计
type AnalyticsOverview struct {
	TotalProducts     int64   `json:"totalProducts"`
	ActiveProducts    int64   `json:"activeProducts"`
	FundingProducts   int64   `json:"fundingProducts"`
	CompletedProducts int64   `json:"completedProducts"`
	TotalBudgetSum    float64 `json:"totalBudgetSum"`
	AvgBudget         float64 `json:"avgBudget"`
}

// AnalyticsInvestments 投资维度的全局统计
type AnalyticsInvestments struct {
	TotalInvestments float64 `json:"totalInvestments"`
	TotalInvestors   int64   `json:"totalInvestors"`
	AvgInvestment    float64 `json:"avgInvestment"`
}

// CategoryStat 类别分布
type CategoryStat struct {
	Category    string  `json:"category"`
	Count       int64   `json:"count"`
	TotalBudget float64 `json:"totalBudget"`
}

// TopFundedProduct 募资进度排名条目
type TopFundedProduct struct {
	Id                int64   `json:"id"`
	ProductTitle      string  `json:"productTitle"`
	Category          string  `json:"category"`
	TotalBudget       float64 `json:"totalBudget"`
	ActualFunding     float64 `json:"actualFunding"`
	FundingPercentage float64 `json:"fundingPercentage"`
}

// GlobalAnalytics 全局募资分析结果
type GlobalAnalytics struct {
	Overview             AnalyticsOverview    `json:"overview"`
	Investments          AnalyticsInvestments `json:"investments"`
	CategoryDistribution []CategoryStat       `json:"categoryDistribution"`
	TopFundedProjects    []TopFundedProduct   `json:"topFundedProjects"`
}

// ComputeGlobalAnalytics 计算全局募资分析：产品概览、投资总量、
// 类别分布以及募资进度前10的激活产品
func (s *StatsLogic) ComputeGlobalAnalytics() (*GlobalAnalytics, error) {
	analytics := &GlobalAnalytics{
		CategoryDistribution: []CategoryStat{},
		TopFundedProjects:    []TopFundedProduct{},
	}

	// 产品概览
	err := s.db.Raw(`
		SELECT
			COUNT(*) AS total_products,
			COALESCE(SUM(CASE WHEN is_active = ? THEN 1 ELSE 0 END), 0) AS active_products,
			COALESCE(SUM(CASE WHEN is_active = ? AND product_status = ? THEN 1 ELSE 0 END), 0) AS funding_products,
			COALESCE(SUM(CASE WHEN is_active = ? AND product_status = ? THEN 1 ELSE 0 END), 0) AS completed_products,
			COALESCE(SUM(total_budget), 0) AS total_budget_sum,
			COALESCE(AVG(total_budget), 0) AS avg_budget
		FROM product
	`, true, true, model.ProductStatusFunding, true, model.ProductStatusCompleted).
		Scan(&analytics.Overview).Error
	if err != nil {
		return nil, storeErr(err)
	}

	// 已完成认购的投资总量
	err = s.db.Model(&model.PledgeModel{}).
		Where("payment_status = ?", model.PaymentStatusCompleted).
		Select("COALESCE(SUM(investment_amount), 0) AS total_investments" +
			", COUNT(*) AS total_investors" +
			", COALESCE(AVG(investment_amount), 0) AS avg_investment").
		Scan(&analytics.Investments).Error
	if err != nil {
		return nil, storeErr(err)
	}

	// 类别分布，按产品数量降序
	err = s.db.Model(&model.ProductModel{}).
		Where("is_active = ?", true).
		Select("category, COUNT(*) AS count, COALESCE(SUM(total_budget), 0) AS total_budget").
		Group("category").
		Order("count DESC").
		Scan(&analytics.CategoryDistribution).Error
	if err != nil {
		return nil, storeErr(err)
	}

	// 募资进度排名：按激活产品的实际募资百分比降序，同分按id保持稳定
	var rows []TopFundedProduct
	err = s.db.Raw(`
		SELECT
			p.id,
			p.product_title,
			p.category,
			p.total_budget,
			COALESCE(f.actual_funding, 0) AS actual_funding
		FROM product p
		LEFT JOIN (
			SELECT product_id, SUM(investment_amount) AS actual_funding
			FROM pledge
			WHERE payment_status = ?
			GROUP BY product_id
		) f ON p.id = f.product_id
		WHERE p.is_active = ?
		ORDER BY p.id ASC
	`, model.PaymentStatusCompleted, true).Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}

	for i := range rows {
		rows[i].FundingPercentage = model.FundingPercentage(rows[i].ActualFunding, rows[i].TotalBudget)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FundingPercentage > rows[j].FundingPercentage
	})
	if len(rows) > 10 {
		rows = rows[:10]
	}
	analytics.TopFundedProjects = rows

	return analytics, nil
}
