package logic

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	emailPattern   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern   = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// PledgeLogic 认购记录业务逻辑
type PledgeLogic struct {
	db    *gorm.DB
	cache cache.ResultCache
}

// NewPledgeLogic 创建认购业务逻辑
func NewPledgeLogic(db *gorm.DB, rc cache.ResultCache) *PledgeLogic {
	return &PledgeLogic{db: db, cache: rc}
}

// CreatePledge 创建认购记录，初始状态为待支付。
// 只有支付完成后才计入产品募资总额。
func (p *PledgeLogic) CreatePledge(pledge *model.PledgeModel) error {
	if err := p.validatePledge(pledge); err != nil {
		return err
	}

	// 产品必须存在、激活且处于募资中
	var product model.ProductModel
	if err := p.db.First(&product, pledge.ProductId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Message: "产品不存在"}
		}
		return storeErr(err)
	}
	if !product.IsActive {
		return &NotFoundError{Message: "产品不存在"}
	}
	if product.FundingStatus != model.FundingStatusActive {
		return NewValidationError("产品当前不接受投资")
	}
	if pledge.InvestmentAmount < product.MinimumInvestment {
		return NewValidationError(fmt.Sprintf("投资金额不能低于产品最低投资额%.2f", product.MinimumInvestment))
	}

	pledge.PaymentStatus = model.PaymentStatusPending
	pledge.Email = strings.ToLower(pledge.Email)

	if err := p.db.Create(pledge).Error; err != nil {
		return storeErr(err)
	}

	p.cache.InvalidateAll()

	return nil
}

// validatePledge 校验认购参数，收集所有字段级错误一次返回
func (p *PledgeLogic) validatePledge(pledge *model.PledgeModel) error {
	var messages []string

	if pledge.ProductId == 0 {
		messages = append(messages, "产品ID不能为空")
	}
	if len(pledge.InvestorName) < 2 || len(pledge.InvestorName) > 100 {
		messages = append(messages, "投资人姓名长度必须在2到100个字符之间")
	}
	if !emailPattern.MatchString(pledge.Email) {
		messages = append(messages, "无效的邮箱地址")
	}
	if !phonePattern.MatchString(pledge.Phone) {
		messages = append(messages, "无效的电话号码")
	}
	if pledge.Pincode != "" && !pincodePattern.MatchString(pledge.Pincode) {
		messages = append(messages, "无效的邮政编码")
	}
	if pledge.InvestmentAmount < model.MinInvestmentAmount {
		messages = append(messages, fmt.Sprintf("投资金额不能低于%d", model.MinInvestmentAmount))
	}
	if pledge.InvestmentAmount > model.MaxInvestmentAmount {
		messages = append(messages, fmt.Sprintf("投资金额不能超过%d", model.MaxInvestmentAmount))
	}
	if cents := pledge.InvestmentAmount * 100; math.Abs(cents-math.Round(cents)) > 1e-9 {
		messages = append(messages, "投资金额最多保留2位小数")
	}
	if !pledge.PaymentMethod.Valid() {
		messages = append(messages, "无效的支付方式")
	}

	if len(messages) > 0 {
		return NewValidationError(messages...)
	}
	return nil
}

// terminalStatuses 终态集合，进入后不允许回到pending/processing
var terminalStatuses = map[model.PaymentStatus]bool{
	model.PaymentStatusCompleted: true,
	model.PaymentStatusFailed:    true,
	model.PaymentStatusRefunded:  true,
	model.PaymentStatusCancelled: true,
}

// UpdatePaymentStatus 更新支付状态。状态迁移单向：终态不能回退。
// 完成支付时补齐交易号和支付时间，并以原子自增方式维护产品上的
// 冗余募资计数，避免并发完成时丢失更新。已完成转退款做补偿递减。
func (p *PledgeLogic) UpdatePaymentStatus(id int64, status model.PaymentStatus, transactionId, gatewayTxId string) (*model.PledgeModel, error) {
	if !status.Valid() {
		return nil, NewValidationError("无效的支付状态: " + string(status))
	}

	var pledge model.PledgeModel
	if err := p.db.First(&pledge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "认购记录不存在"}
		}
		return nil, storeErr(err)
	}

	if pledge.PaymentStatus == status {
		return &pledge, nil
	}
	if terminalStatuses[pledge.PaymentStatus] {
		// 唯一允许的终态迁移：已完成转退款
		if !(pledge.PaymentStatus == model.PaymentStatusCompleted && status == model.PaymentStatusRefunded) {
			return nil, NewValidationError(fmt.Sprintf("支付状态不能从%s变更为%s", pledge.PaymentStatus, status))
		}
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"payment_status": status,
		}
		if transactionId != "" {
			updates["transaction_id"] = transactionId
		}
		if gatewayTxId != "" {
			updates["gateway_tx_id"] = gatewayTxId
		}

		if status == model.PaymentStatusCompleted {
			if pledge.TransactionId == "" && transactionId == "" {
				updates["transaction_id"] = generateTransactionId()
			}
			if pledge.PaymentDate == nil {
				now := time.Now()
				updates["payment_date"] = &now
			}

			// 原子自增产品募资计数
			if err := tx.Model(&model.ProductModel{}).Where("id = ?", pledge.ProductId).
				UpdateColumns(map[string]interface{}{
					"current_funding": gorm.Expr("current_funding + ?", pledge.InvestmentAmount),
					"total_investors": gorm.Expr("total_investors + 1"),
				}).Error; err != nil {
				return storeErr(err)
			}
		}

		if pledge.PaymentStatus == model.PaymentStatusCompleted && status == model.PaymentStatusRefunded {
			// 退款补偿递减
			if err := tx.Model(&model.ProductModel{}).Where("id = ?", pledge.ProductId).
				UpdateColumns(map[string]interface{}{
					"current_funding": gorm.Expr("current_funding - ?", pledge.InvestmentAmount),
					"total_investors": gorm.Expr("total_investors - 1"),
				}).Error; err != nil {
				return storeErr(err)
			}
		}

		if err := tx.Model(&model.PledgeModel{}).Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.cache.InvalidateAll()

	if err := p.db.First(&pledge, id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &pledge, nil
}

// GetPledge 获取单条认购记录
func (p *PledgeLogic) GetPledge(id int64) (*model.PledgeModel, error) {
	var pledge model.PledgeModel
	if err := p.db.First(&pledge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "认购记录不存在"}
		}
		return nil, storeErr(err)
	}
	return &pledge, nil
}

// GetPledgesByProduct 获取产品的认购记录，按创建时间倒序分页
func (p *PledgeLogic) GetPledgesByProduct(productId int64, page, pageSize int) ([]model.PledgeModel, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := p.db.Model(&model.PledgeModel{}).
		Where("product_id = ?", productId).Count(&total).Error; err != nil {
		return nil, Pagination{}, storeErr(err)
	}

	var pledges []model.PledgeModel
	if err := p.db.Where("product_id = ?", productId).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pledges).Error; err != nil {
		return nil, Pagination{}, storeErr(err)
	}

	return pledges, NewPagination(page, pageSize, total), nil
}

// generateTransactionId 生成交易号
func generateTransactionId() string {
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
