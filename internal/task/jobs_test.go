package task

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/model"
	"github.com/blues/ivp/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{Task: config.TaskConfig{Interval: 300}}
}

func seedProduct(t *testing.T, db *gorm.DB, title string, budget float64) *model.ProductModel {
	t.Helper()

	product := &model.ProductModel{
		ProductTitle:      title,
		Description:       "测试产品描述",
		ArtistName:        "Test Artist",
		Category:          model.CategoryMusic,
		TotalBudget:       budget,
		MinimumInvestment: 100,
		FundingStatus:     model.FundingStatusActive,
		ProductStatus:     model.ProductStatusFunding,
		IsActive:          true,
		Slug:              strings.ToLower(strings.ReplaceAll(title, " ", "-")),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product %q: %v", title, err)
	}
	return product
}

func seedPledge(t *testing.T, db *gorm.DB, productId int64, amount float64, status model.PaymentStatus) {
	t.Helper()

	pledge := &model.PledgeModel{
		ProductId:        productId,
		InvestorName:     "Test Investor",
		Email:            "investor@example.com",
		Phone:            "9876543210",
		InvestmentAmount: amount,
		PaymentMethod:    model.PaymentMethodUPI,
		PaymentStatus:    status,
	}
	if err := db.Create(pledge).Error; err != nil {
		t.Fatalf("failed to seed pledge: %v", err)
	}
}

func TestReconcileJobFixesDrift(t *testing.T) {
	db := newTestDB(t)
	rc := cache.New()

	drifted := seedProduct(t, db, "Drifted", 10000)
	seedPledge(t, db, drifted.Id, 2000, model.PaymentStatusCompleted)
	seedPledge(t, db, drifted.Id, 4000, model.PaymentStatusCompleted)
	seedPledge(t, db, drifted.Id, 9999, model.PaymentStatusPending)
	// 计数与认购记录不一致
	if err := db.Model(drifted).UpdateColumns(map[string]interface{}{
		"current_funding": 100.0,
		"total_investors": 7,
	}).Error; err != nil {
		t.Fatalf("seed drift: %v", err)
	}

	consistent := seedProduct(t, db, "Consistent", 10000)
	seedPledge(t, db, consistent.Id, 3000, model.PaymentStatusCompleted)
	if err := db.Model(consistent).UpdateColumns(map[string]interface{}{
		"current_funding": 3000.0,
		"total_investors": 1,
	}).Error; err != nil {
		t.Fatalf("seed counters: %v", err)
	}

	rc.Set("products:stale", "cached", time.Minute)

	job := NewReconcileJob(db, rc, testConfig())
	job.Execute()

	var check model.ProductModel
	if err := db.First(&check, drifted.Id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if check.CurrentFunding != 6000 || check.TotalInvestors != 2 {
		t.Errorf("counters = %v/%d, want 6000/2", check.CurrentFunding, check.TotalInvestors)
	}

	if _, ok := rc.Get("products:stale"); ok {
		t.Error("cache not invalidated after reconcile fixed drift")
	}
}

func TestReconcileJobClampsToBudget(t *testing.T) {
	db := newTestDB(t)
	rc := cache.New()

	overfunded := seedProduct(t, db, "Overfunded", 10000)
	seedPledge(t, db, overfunded.Id, 12000, model.PaymentStatusCompleted)

	job := NewReconcileJob(db, rc, testConfig())
	job.Execute()

	var check model.ProductModel
	if err := db.First(&check, overfunded.Id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if check.CurrentFunding != 10000 {
		t.Errorf("current funding = %v, want clamped 10000", check.CurrentFunding)
	}
	if check.TotalInvestors != 1 {
		t.Errorf("total investors = %d, want 1", check.TotalInvestors)
	}
}

func TestReconcileJobNoDrift(t *testing.T) {
	db := newTestDB(t)
	rc := cache.New()

	product := seedProduct(t, db, "Clean", 10000)
	seedPledge(t, db, product.Id, 2000, model.PaymentStatusCompleted)
	if err := db.Model(product).UpdateColumns(map[string]interface{}{
		"current_funding": 2000.0,
		"total_investors": 1,
	}).Error; err != nil {
		t.Fatalf("seed counters: %v", err)
	}

	rc.Set("products:fresh", "cached", time.Minute)

	job := NewReconcileJob(db, rc, testConfig())
	job.Execute()

	// 没有修正时缓存保持有效
	if _, ok := rc.Get("products:fresh"); !ok {
		t.Error("cache invalidated although nothing changed")
	}
}

func TestDeadlineJobClosesExpiredFundings(t *testing.T) {
	db := newTestDB(t)
	rc := cache.New()

	past := time.Now().Add(-24 * time.Hour)
	expired := seedProduct(t, db, "Expired", 10000)
	if err := db.Model(expired).Update("funding_deadline", &past).Error; err != nil {
		t.Fatalf("set deadline: %v", err)
	}

	future := time.Now().Add(24 * time.Hour)
	running := seedProduct(t, db, "Running", 10000)
	if err := db.Model(running).Update("funding_deadline", &future).Error; err != nil {
		t.Fatalf("set deadline: %v", err)
	}

	open := seedProduct(t, db, "No Deadline", 10000)

	rc.Set("products:stale", "cached", time.Minute)

	job := NewDeadlineJob(db, rc, testConfig())
	job.Execute()

	var check model.ProductModel
	db.First(&check, expired.Id)
	if check.FundingStatus != model.FundingStatusCompleted {
		t.Errorf("expired product status = %q, want completed", check.FundingStatus)
	}

	db.First(&check, running.Id)
	if check.FundingStatus != model.FundingStatusActive {
		t.Errorf("running product status = %q, want active", check.FundingStatus)
	}

	db.First(&check, open.Id)
	if check.FundingStatus != model.FundingStatusActive {
		t.Errorf("product without deadline status = %q, want active", check.FundingStatus)
	}

	if _, ok := rc.Get("products:stale"); ok {
		t.Error("cache not invalidated after closing expired fundings")
	}
}

func TestManagerStartStop(t *testing.T) {
	db := newTestDB(t)
	rc := cache.New()

	manager := Start(db, rc, testConfig())
	manager.Stop()
}
