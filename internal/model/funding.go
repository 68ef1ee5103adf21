package model

import (
	"fmt"
	"time"
)

// FundingPercentage 计算募资完成百分比，所有读取路径必须使用这一个实现。
// 结果限定在[0,100]区间：超募不会显示超过100%，目标金额非法时返回0。
func FundingPercentage(currentFunding, totalBudget float64) float64 {
	if totalBudget <= 0 {
		return 0
	}
	pct := currentFunding / totalBudget * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RemainingAmount 计算剩余可募资金额，不会为负
func RemainingAmount(currentFunding, totalBudget float64) float64 {
	remaining := totalBudget - currentFunding
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FundingStatusText 根据募资百分比返回展示文案
func FundingStatusText(percentage float64) string {
	switch {
	case percentage >= 100:
		return "Fully Funded"
	case percentage >= 75:
		return "Almost There"
	case percentage >= 50:
		return "Half Way"
	case percentage >= 25:
		return "Getting Started"
	default:
		return "Just Started"
	}
}

// TimeRemaining 计算距离募资截止时间的展示文案，未设置截止时间返回空串
func TimeRemaining(deadline *time.Time, now time.Time) string {
	if deadline == nil {
		return ""
	}
	diff := deadline.Sub(now)
	if diff <= 0 {
		return "Expired"
	}
	days := int(diff.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%d days left", days)
	}
	return fmt.Sprintf("%d hours left", int(diff.Hours()))
}
