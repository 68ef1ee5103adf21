package logic

import (
	"strings"
	"testing"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/model"
)

func newPledgeLogic(t *testing.T) *PledgeLogic {
	t.Helper()
	return NewPledgeLogic(newTestDB(t), cache.New())
}

func validPledge(productId int64, amount float64) *model.PledgeModel {
	return &model.PledgeModel{
		ProductId:        productId,
		InvestorName:     "Asha Rao",
		Email:            "Asha.Rao@Example.com",
		Phone:            "9876543210",
		Pincode:          "560001",
		InvestmentAmount: amount,
		PaymentMethod:    model.PaymentMethodUPI,
	}
}

func TestCreatePledge(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Pledge Target", 10000)

	pledge := validPledge(product.Id, 500)
	pledge.PaymentStatus = model.PaymentStatusCompleted // 客户端无权指定状态

	if err := p.CreatePledge(pledge); err != nil {
		t.Fatalf("CreatePledge: %v", err)
	}

	if pledge.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("payment status = %q, want pending", pledge.PaymentStatus)
	}
	if pledge.Email != "asha.rao@example.com" {
		t.Errorf("email not lowercased: %q", pledge.Email)
	}
	if pledge.Id == 0 {
		t.Error("pledge id not assigned")
	}
}

func TestCreatePledgeValidation(t *testing.T) {
	p := newPledgeLogic(t)

	tests := []struct {
		name   string
		mutate func(*model.PledgeModel)
	}{
		{"缺少产品ID", func(m *model.PledgeModel) { m.ProductId = 0 }},
		{"姓名过短", func(m *model.PledgeModel) { m.InvestorName = "A" }},
		{"无效邮箱", func(m *model.PledgeModel) { m.Email = "not-an-email" }},
		{"无效电话", func(m *model.PledgeModel) { m.Phone = "12345" }},
		{"无效邮编", func(m *model.PledgeModel) { m.Pincode = "12" }},
		{"金额过低", func(m *model.PledgeModel) { m.InvestmentAmount = 50 }},
		{"金额过高", func(m *model.PledgeModel) { m.InvestmentAmount = 20000000 }},
		{"小数位过多", func(m *model.PledgeModel) { m.InvestmentAmount = 100.999 }},
		{"无效支付方式", func(m *model.PledgeModel) { m.PaymentMethod = "Crypto" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pledge := validPledge(1, 500)
			tt.mutate(pledge)
			if err := p.CreatePledge(pledge); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreatePledgeProductChecks(t *testing.T) {
	p := newPledgeLogic(t)

	if err := p.CreatePledge(validPledge(404, 500)); !IsNotFound(err) {
		t.Errorf("expected not found for missing product, got %v", err)
	}

	inactive := seedProduct(t, p.db, "Inactive", 10000)
	if err := p.db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := p.CreatePledge(validPledge(inactive.Id, 500)); !IsNotFound(err) {
		t.Errorf("expected not found for inactive product, got %v", err)
	}

	closed := seedProduct(t, p.db, "Closed", 10000)
	if err := p.db.Model(closed).Update("funding_status", model.FundingStatusCompleted).Error; err != nil {
		t.Fatalf("close funding: %v", err)
	}
	if err := p.CreatePledge(validPledge(closed.Id, 500)); !IsValidation(err) {
		t.Errorf("expected validation error for closed funding, got %v", err)
	}

	strict := seedProduct(t, p.db, "Strict", 10000)
	if err := p.db.Model(strict).Update("minimum_investment", 1000).Error; err != nil {
		t.Fatalf("raise minimum: %v", err)
	}
	if err := p.CreatePledge(validPledge(strict.Id, 500)); !IsValidation(err) {
		t.Errorf("expected validation error below product minimum, got %v", err)
	}
}

func TestUpdatePaymentStatusCompleted(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Counter Target", 10000)
	pledge := seedPledge(t, p.db, product.Id, 2500, model.PaymentStatusPending)

	updated, err := p.UpdatePaymentStatus(pledge.Id, model.PaymentStatusCompleted, "", "")
	if err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}

	if updated.PaymentStatus != model.PaymentStatusCompleted {
		t.Errorf("status = %q, want completed", updated.PaymentStatus)
	}
	if !strings.HasPrefix(updated.TransactionId, "TXN") {
		t.Errorf("transaction id = %q, want TXN prefix", updated.TransactionId)
	}
	if updated.PaymentDate == nil {
		t.Error("payment date not set")
	}

	// 冗余计数原子自增
	var check model.ProductModel
	if err := p.db.First(&check, product.Id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if check.CurrentFunding != 2500 || check.TotalInvestors != 1 {
		t.Errorf("counters = %v/%d, want 2500/1", check.CurrentFunding, check.TotalInvestors)
	}
}

func TestUpdatePaymentStatusKeepsProvidedTransactionId(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Gateway Target", 10000)
	pledge := seedPledge(t, p.db, product.Id, 1000, model.PaymentStatusPending)

	updated, err := p.UpdatePaymentStatus(pledge.Id, model.PaymentStatusCompleted, "TXN-GATEWAY-1", "gw-777")
	if err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}
	if updated.TransactionId != "TXN-GATEWAY-1" {
		t.Errorf("transaction id = %q, want TXN-GATEWAY-1", updated.TransactionId)
	}
	if updated.GatewayTxId != "gw-777" {
		t.Errorf("gateway tx id = %q, want gw-777", updated.GatewayTxId)
	}
}

func TestUpdatePaymentStatusSameStatusNoop(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Noop Target", 10000)
	pledge := seedPledge(t, p.db, product.Id, 1000, model.PaymentStatusPending)

	if _, err := p.UpdatePaymentStatus(pledge.Id, model.PaymentStatusPending, "", ""); err != nil {
		t.Fatalf("same-status update: %v", err)
	}

	var check model.ProductModel
	p.db.First(&check, product.Id)
	if check.CurrentFunding != 0 || check.TotalInvestors != 0 {
		t.Errorf("counters changed on no-op: %v/%d", check.CurrentFunding, check.TotalInvestors)
	}
}

func TestUpdatePaymentStatusTerminalTransitions(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Terminal Target", 10000)

	failed := seedPledge(t, p.db, product.Id, 1000, model.PaymentStatusFailed)
	if _, err := p.UpdatePaymentStatus(failed.Id, model.PaymentStatusCompleted, "", ""); !IsValidation(err) {
		t.Errorf("failed->completed should be rejected, got %v", err)
	}

	completed := seedPledge(t, p.db, product.Id, 1000, model.PaymentStatusCompleted)
	if _, err := p.UpdatePaymentStatus(completed.Id, model.PaymentStatusPending, "", ""); !IsValidation(err) {
		t.Errorf("completed->pending should be rejected, got %v", err)
	}

	if _, err := p.UpdatePaymentStatus(failed.Id, "bogus", "", ""); !IsValidation(err) {
		t.Errorf("invalid status should be rejected, got %v", err)
	}

	if _, err := p.UpdatePaymentStatus(404, model.PaymentStatusCompleted, "", ""); !IsNotFound(err) {
		t.Errorf("expected not found for missing pledge, got %v", err)
	}
}

func TestUpdatePaymentStatusRefund(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Refund Target", 10000)
	pledge := seedPledge(t, p.db, product.Id, 3000, model.PaymentStatusPending)

	if _, err := p.UpdatePaymentStatus(pledge.Id, model.PaymentStatusCompleted, "", ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	updated, err := p.UpdatePaymentStatus(pledge.Id, model.PaymentStatusRefunded, "", "")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if updated.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("status = %q, want refunded", updated.PaymentStatus)
	}

	// 退款后补偿递减
	var check model.ProductModel
	if err := p.db.First(&check, product.Id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if check.CurrentFunding != 0 || check.TotalInvestors != 0 {
		t.Errorf("counters after refund = %v/%d, want 0/0", check.CurrentFunding, check.TotalInvestors)
	}
}

func TestGetPledgesByProduct(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Listable", 10000)
	for i := 0; i < 25; i++ {
		seedPledge(t, p.db, product.Id, 500, model.PaymentStatusPending)
	}

	pledges, pagination, err := p.GetPledgesByProduct(product.Id, 1, 20)
	if err != nil {
		t.Fatalf("GetPledgesByProduct: %v", err)
	}
	if len(pledges) != 20 {
		t.Errorf("page 1 len = %d, want 20", len(pledges))
	}
	if pagination.TotalItems != 25 || pagination.TotalPages != 2 || !pagination.HasNext {
		t.Errorf("pagination = %+v", pagination)
	}

	pledges, pagination, err = p.GetPledgesByProduct(product.Id, 2, 20)
	if err != nil {
		t.Fatalf("GetPledgesByProduct page 2: %v", err)
	}
	if len(pledges) != 5 || pagination.HasNext || !pagination.HasPrev {
		t.Errorf("page 2 len = %d, pagination = %+v", len(pledges), pagination)
	}
}

func TestGetPledge(t *testing.T) {
	p := newPledgeLogic(t)

	product := seedProduct(t, p.db, "Single", 10000)
	pledge := seedPledge(t, p.db, product.Id, 500, model.PaymentStatusPending)

	got, err := p.GetPledge(pledge.Id)
	if err != nil {
		t.Fatalf("GetPledge: %v", err)
	}
	if got.Id != pledge.Id {
		t.Errorf("id = %d, want %d", got.Id, pledge.Id)
	}

	if _, err := p.GetPledge(404); !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
