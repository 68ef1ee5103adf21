package logic

import (
	"testing"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/model"
)

func TestGetFundingAnalytics(t *testing.T) {
	db := newTestDB(t)
	rc := cache.New()
	a := NewAnalyticsLogic(db, rc, testConfig())

	product := seedProduct(t, db, "Analytics Album", 10000)
	seedPledge(t, db, product.Id, 6000, model.PaymentStatusCompleted)

	got, err := a.GetFundingAnalytics()
	if err != nil {
		t.Fatalf("GetFundingAnalytics: %v", err)
	}
	if got.Overview.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d, want 1", got.Overview.TotalProducts)
	}
	if got.Investments.TotalInvestments != 6000 {
		t.Errorf("TotalInvestments = %v, want 6000", got.Investments.TotalInvestments)
	}

	// 第二次读取命中缓存，绕过业务层的写入不可见
	seedProduct(t, db, "Invisible", 10000)
	cached, err := a.GetFundingAnalytics()
	if err != nil {
		t.Fatalf("GetFundingAnalytics cached: %v", err)
	}
	if cached.Overview.TotalProducts != 1 {
		t.Errorf("cached TotalProducts = %d, want 1", cached.Overview.TotalProducts)
	}

	// 失效后重新聚合
	rc.InvalidateAll()
	fresh, err := a.GetFundingAnalytics()
	if err != nil {
		t.Fatalf("GetFundingAnalytics fresh: %v", err)
	}
	if fresh.Overview.TotalProducts != 2 {
		t.Errorf("fresh TotalProducts = %d, want 2", fresh.Overview.TotalProducts)
	}
}
