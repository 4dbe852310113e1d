// Package payment 发起支付与上游网关中转
package payment

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paydash/app/models/catalog"
	"paydash/app/repositories"
	"paydash/app/requests"
	"paydash/pkg/logger"
	paymentpkg "paydash/pkg/payment"
	"paydash/pkg/payment/pay10"
	"paydash/pkg/payment/types"
	"paydash/pkg/payment/unlimit"
	"paydash/pkg/payment/utils"
	"paydash/pkg/response"
)

// Options 控制器需要的网关配置
type Options struct {
	Origin                  string
	Pay10PaymentURL         string
	Pay10CurrencyCode       string
	Pay10TxnType            string
	UnlimitAPIBase          string
	UnlimitTerminalCode     string
	UnlimitTerminalPassword string
}

// PaymentController 支付控制器
type PaymentController struct {
	terminals *repositories.TerminalRepository
	payments  *repositories.PaymentRepository
	unlimit   *unlimit.Client
	ids       *utils.IDGenerator
	opts      Options
}

// NewPaymentController 创建支付控制器
func NewPaymentController(
	terminals *repositories.TerminalRepository,
	payments *repositories.PaymentRepository,
	client *unlimit.Client,
	ids *utils.IDGenerator,
	opts Options,
) *PaymentController {
	return &PaymentController{
		terminals: terminals,
		payments:  payments,
		unlimit:   client,
		ids:       ids,
		opts:      opts,
	}
}

// Pay10Initiate 生成 Pay10 支付表单
// POST /api/pay10/initiate
func (pc *PaymentController) Pay10Initiate(c *gin.Context) {
	req, err := requests.ValidatePay10Initiate(c)
	if err != nil {
		abortWithRequestError(c, err)
		return
	}

	t, err := pc.terminals.FirstByUtility(c.Request.Context(), string(types.GatewayPay10), req.Utility)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "No terminal configuration found for this service.")
			return
		}
		response.ServerError(c, err)
		return
	}
	if t.PayloadID == "" || t.SecretKey == "" {
		response.Abort500(c, "Terminal configuration is incomplete. Please ensure Payload ID and Secret Key are set.")
		return
	}

	origin := paymentpkg.ResolveOrigin(pc.opts.Origin, c.Request)
	payReq, err := pay10.BuildPaymentRequest(pc.opts.Pay10PaymentURL, pay10.RequestParams{
		OrderID:      pc.ids.OrderID(),
		Amount:       req.Amount,
		PayID:        t.PayloadID,
		ReturnURL:    origin + "/api/pay10/callback",
		TxnType:      pc.opts.Pay10TxnType,
		CurrencyCode: pc.opts.Pay10CurrencyCode,
	}, t.SecretKey)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	logger.Info("Pay10",
		zap.String("order_id", payReq.OrderID),
		zap.String("terminal", t.Name),
		zap.String("utility", req.Utility),
	)
	response.Data(c, payReq)
}

// Context 返回通用支付上下文，只暴露终端名称
// POST /api/payment/:gateway
func (pc *PaymentController) Context(c *gin.Context) {
	gateway, ok := catalog.FindGateway(c.Param("gateway"))
	if !ok {
		response.Relay(c, http.StatusNotFound, gin.H{"success": false, "error": "Unknown gateway"})
		return
	}

	req, err := requests.ValidatePaymentContext(c)
	if err != nil {
		var (
			verr    requests.ValidationError
			details interface{}
		)
		if errors.As(err, &verr) {
			details = verr.Errors
		}
		response.Relay(c, http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request data", "details": details})
		return
	}
	if !gateway.Supports(req.Utility) {
		response.Relay(c, http.StatusBadRequest, gin.H{"success": false, "error": "Utility not supported by gateway"})
		return
	}

	terminalName := ""
	t, err := pc.terminals.FirstByUtility(c.Request.Context(), gateway.ID, req.Utility)
	switch {
	case err == nil:
		terminalName = t.Name
	case !errors.Is(err, gorm.ErrRecordNotFound):
		logger.LogIf(err)
		response.Relay(c, http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	response.JSON(c, gin.H{
		"success": true,
		"data": gin.H{
			"gateway":  gateway.ID,
			"utility":  req.Utility,
			"terminal": terminalName,
			"context":  req,
		},
	})
}

// UnlimitAuth 中转 Unlimit 令牌交换
// POST /api/unlimit/auth
func (pc *PaymentController) UnlimitAuth(c *gin.Context) {
	req, err := requests.BindUnlimitAuth(c)
	if err != nil {
		response.Relay(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenReq := unlimit.TokenRequest{
		GrantType:    req.GrantType,
		TerminalCode: req.TerminalCode,
		Password:     req.Password,
		RefreshToken: req.RefreshToken,
	}
	if tokenReq.GrantType == unlimit.GrantPassword {
		if tokenReq.TerminalCode == "" {
			tokenReq.TerminalCode = pc.opts.UnlimitTerminalCode
		}
		if tokenReq.Password == "" {
			tokenReq.Password = pc.opts.UnlimitTerminalPassword
		}
	}

	reply, err := pc.unlimit.ExchangeToken(c.Request.Context(), pc.opts.UnlimitAPIBase, tokenReq)
	if err != nil {
		if errors.Is(err, unlimit.ErrMissingGrantField) || errors.Is(err, unlimit.ErrUnsupportedGrant) {
			response.Relay(c, http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.LogIf(err)
		response.Relay(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response.Relay(c, reply.Status, reply.Body)
}

// UnlimitPayments 使用业务对应的 Unlimit 终端创建支付
// POST /api/unlimit/payments
func (pc *PaymentController) UnlimitPayments(c *gin.Context) {
	req, err := requests.BindUnlimitPayment(c)
	if err != nil {
		abortWithRequestError(c, err)
		return
	}

	ctx := c.Request.Context()
	t, err := pc.terminals.FirstByUtility(ctx, string(types.GatewayUnlimit), req.Utility)
	if err != nil || t.APIBase == "" || t.TerminalCode == "" || t.TerminalPassword == "" {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.LogIf(err)
		}
		response.Relay(c, http.StatusInternalServerError, gin.H{
			"error": "Unlimit terminal configuration not found for this utility. Please create a terminal under gateway unlimit with fields: utility_id, api_base, terminal_code, terminal_password.",
		})
		return
	}

	token, err := pc.unlimit.AccessToken(ctx, t.APIBase, t.TerminalCode, t.TerminalPassword)
	if err != nil {
		var (
			upstream *unlimit.UpstreamError
			tokenErr *unlimit.TokenError
		)
		switch {
		case errors.As(err, &upstream):
			response.Relay(c, upstream.Status, gin.H{"error": "Auth token request failed", "upstreamBody": upstream.Body})
		case errors.As(err, &tokenErr):
			response.Relay(c, http.StatusInternalServerError, gin.H{"error": tokenErr.Error(), "upstreamBody": tokenErr.Body})
		default:
			logger.LogIf(err)
			response.Relay(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	payload := unlimit.NewPaymentPayload(unlimit.PaymentOptions{
		Amount:        req.Amount.String(),
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		RequestName:   req.RequestName,
	}, time.Now())

	reply, err := pc.unlimit.CreatePayment(ctx, t.APIBase, token, payload)
	if err != nil {
		logger.LogIf(err)
		response.Relay(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	logger.Info("Unlimit",
		zap.String("merchant_order_id", payload.MerchantOrder.ID),
		zap.String("terminal", t.Name),
		zap.Int("upstream_status", reply.Status),
	)
	response.Relay(c, reply.Status, gin.H{
		"upstreamStatus": reply.Status,
		"payloadSent":    payload,
		"upstreamBody":   reply.Body,
	})
}

// Show 查询支付状态，只返回订单号、网关、状态和接收时间
// GET /api/payments/:orderId
func (pc *PaymentController) Show(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	record, err := pc.payments.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "支付记录不存在")
			return
		}
		response.ServerError(c, err)
		return
	}

	response.Data(c, record.View())
}

func abortWithRequestError(c *gin.Context, err error) {
	var verr requests.ValidationError
	if errors.As(err, &verr) {
		response.ValidationError(c, verr.Errors)
		return
	}
	response.BadRequest(c, err)
}
