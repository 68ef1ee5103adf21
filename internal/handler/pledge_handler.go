package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/ivp/internal/logic"
	"github.com/blues/ivp/internal/model"
	"github.com/gin-gonic/gin"
)

type PledgeHandler struct {
	pledgeLogic *logic.PledgeLogic
}

func NewPledgeHandler(pledgeLogic *logic.PledgeLogic) *PledgeHandler {
	return &PledgeHandler{pledgeLogic: pledgeLogic}
}

// CreatePledge 创建认购记录
func (h *PledgeHandler) CreatePledge(c *gin.Context) {
	var pledge model.PledgeModel
	if err := c.ShouldBindJSON(&pledge); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pledgeLogic.CreatePledge(&pledge); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "认购创建成功", gin.H{"pledge": pledge})
}

// UpdatePaymentStatusRequest 支付状态更新请求
type UpdatePaymentStatusRequest struct {
	PaymentStatus        string `json:"paymentStatus" binding:"required"`
	TransactionId        string `json:"transactionId"`
	GatewayTransactionId string `json:"gatewayTransactionId"`
}

// UpdatePaymentStatus 更新认购的支付状态
func (h *PledgeHandler) UpdatePaymentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的认购ID")
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	pledge, err := h.pledgeLogic.UpdatePaymentStatus(id,
		model.PaymentStatus(req.PaymentStatus), req.TransactionId, req.GatewayTransactionId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "支付状态已更新", gin.H{"pledge": pledge})
}

// GetPledge 获取认购详情
func (h *PledgeHandler) GetPledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的认购ID")
		return
	}

	pledge, err := h.pledgeLogic.GetPledge(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"pledge": pledge})
}

// GetProductPledges 获取产品的认购记录
func (h *PledgeHandler) GetProductPledges(c *gin.Context) {
	productId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	pledges, pagination, err := h.pledgeLogic.GetPledgesByProduct(productId, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"pledges":    pledges,
		"pagination": pagination,
	})
}
