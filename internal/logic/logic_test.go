package logic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/model"
	"github.com/blues/ivp/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 创建每个测试独立的内存数据库
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
	return &config.Config{
		Cache: config.CacheConfig{
			ListTTL:      300,
			SearchTTL:    120,
			ProductTTL:   120,
			AnalyticsTTL: 300,
		},
		Storage: config.StorageConfig{PoolSize: 2},
	}
}

// seedProduct 插入测试产品，绕过创建流程直接落库
func seedProduct(t *testing.T, db *gorm.DB, title string, budget float64) *model.ProductModel {
	t.Helper()

	product := &model.ProductModel{
		ProductTitle:      title,
		Description:       "测试产品描述",
		ArtistName:        "Test Artist",
		Category:          model.CategoryMusic,
		Genre:             model.GenrePop,
		TotalBudget:       budget,
		MinimumInvestment: 100,
		FundingStatus:     model.FundingStatusActive,
		ProductStatus:     model.ProductStatusFunding,
		IsActive:          true,
		Slug:              Slugify(title),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product %q: %v", title, err)
	}
	return product
}

// seedPledge 插入指定支付状态的认购记录
func seedPledge(t *testing.T, db *gorm.DB, productId int64, amount float64, status model.PaymentStatus) *model.PledgeModel {
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
	return pledge
}
