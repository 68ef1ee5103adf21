package model

import (
	"time"

	"gorm.io/datatypes"
)

// PledgeModel 投资认购记录
type PledgeModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_pledge_created_status,priority:1,sort:desc"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联产品，创建后不可变更
	ProductId int64 `json:"product_id" gorm:"not null;index:idx_pledge_product_status,priority:1" binding:"required"`

	// 投资人信息
	InvestorName string `json:"investor_name" gorm:"size:100;not null;index" binding:"required"`
	Email        string `json:"email" gorm:"size:200;not null;index" binding:"required"`
	Phone        string `json:"phone" gorm:"size:20;not null" binding:"required"`
	Street       string `json:"street" gorm:"size:200"`
	City         string `json:"city" gorm:"size:50;index"`
	State        string `json:"state" gorm:"size:50"`
	Pincode      string `json:"pincode" gorm:"size:10"`
	Country      string `json:"country" gorm:"size:50;default:'India'"`

	// 投资信息
	InvestmentAmount float64       `json:"investment_amount" gorm:"not null" binding:"required"`
	PaymentMethod    PaymentMethod `json:"payment_method" gorm:"size:20;not null" binding:"required"`
	PaymentStatus    PaymentStatus `json:"payment_status" gorm:"size:20;default:'pending';index:idx_pledge_product_status,priority:2;index:idx_pledge_created_status,priority:2"`
	TransactionId    string        `json:"transaction_id" gorm:"size:100;index"`
	PaymentDate      *time.Time    `json:"payment_date"`
	PaymentGateway   string        `json:"payment_gateway" gorm:"size:50"`
	GatewayTxId      string        `json:"gateway_tx_id" gorm:"size:100"`

	// 投资条款
	ExpectedReturns    float64    `json:"expected_returns" gorm:"default:0"`
	InvestmentDuration string     `json:"investment_duration" gorm:"size:50"`
	MaturityDate       *time.Time `json:"maturity_date"`

	// 状态跟踪
	InvestmentStatus InvestmentStatus `json:"investment_status" gorm:"size:20;default:'active'"`

	// 合规信息
	KycStatus    KycStatus      `json:"kyc_status" gorm:"size:20;default:'pending'"`
	KycDocuments datatypes.JSON `json:"kyc_documents"`
	RiskProfile  RiskProfile    `json:"risk_profile" gorm:"size:10;default:'medium'"`
	InvestorType InvestorType   `json:"investor_type" gorm:"size:20;default:'individual'"`

	// 其他
	Notes        string `json:"notes" gorm:"size:1000"`
	ReferralCode string `json:"referral_code" gorm:"size:20"`
}

// TableName 自定义表名
func (PledgeModel) TableName() string {
	return "pledge"
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodNetBanking   PaymentMethod = "NetBanking"
	PaymentMethodWallet       PaymentMethod = "Wallet"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodCash         PaymentMethod = "Cash"
)

// Valid 校验支付方式取值
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetBanking,
		PaymentMethodWallet, PaymentMethodBankTransfer, PaymentMethodCash:
		return true
	}
	return false
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"    // 待支付
	PaymentStatusProcessing PaymentStatus = "processing" // 支付中
	PaymentStatusCompleted  PaymentStatus = "completed"  // 已完成，计入募资总额
	PaymentStatusFailed     PaymentStatus = "failed"     // 失败
	PaymentStatusRefunded   PaymentStatus = "refunded"   // 已退款
	PaymentStatusCancelled  PaymentStatus = "cancelled"  // 已取消
)

// Valid 校验支付状态取值
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusCancelled:
		return true
	}
	return false
}

// InvestmentStatus 投资状态
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusMatured   InvestmentStatus = "matured"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
	InvestmentStatusWithdrawn InvestmentStatus = "withdrawn"
	InvestmentStatusSuspended InvestmentStatus = "suspended"
)

// KycStatus KYC审核状态
type KycStatus string

const (
	KycStatusPending   KycStatus = "pending"
	KycStatusSubmitted KycStatus = "submitted"
	KycStatusVerified  KycStatus = "verified"
	KycStatusRejected  KycStatus = "rejected"
)

// RiskProfile 风险偏好
type RiskProfile string

const (
	RiskProfileLow    RiskProfile = "low"
	RiskProfileMedium RiskProfile = "medium"
	RiskProfileHigh   RiskProfile = "high"
)

// InvestorType 投资人类型
type InvestorType string

const (
	InvestorTypeIndividual    InvestorType = "individual"
	InvestorTypeCorporate     InvestorType = "corporate"
	InvestorTypeInstitutional InvestorType = "institutional"
)

// 投资金额约束
const (
	MinInvestmentAmount = 100
	MaxInvestmentAmount = 10000000
)
