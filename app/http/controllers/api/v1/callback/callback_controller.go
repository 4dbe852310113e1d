// Package callback 网关异步回调
package callback

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paydash/pkg/logger"
	"paydash/pkg/payment"
	"paydash/pkg/payment/types"
	"paydash/pkg/response"
)

// CallbackController 网关回调控制器
type CallbackController struct {
	processor *payment.Processor
	origin    string // 配置的站点地址，为空时使用请求自身的 origin
}

// NewCallbackController 创建回调控制器
func NewCallbackController(processor *payment.Processor, origin string) *CallbackController {
	return &CallbackController{
		processor: processor,
		origin:    origin,
	}
}

// Pay10 处理 Pay10 表单回调
// POST /api/pay10/callback，成功后 302 跳转到结果页
func (cc *CallbackController) Pay10(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.BadRequest(c, err, "回调表单格式错误")
		return
	}

	result, err := cc.processor.Process(c.Request.Context(), types.GatewayPay10, &types.Callback{
		Form: c.Request.PostForm,
	})
	if err != nil {
		abortWithProcessError(c, err)
		return
	}

	origin := payment.ResolveOrigin(cc.origin, c.Request)
	c.Redirect(http.StatusFound, payment.ResultURL(origin, result.Verdict.Status, result.Verdict.OrderID))
}

// Unlimit 处理 Unlimit JSON 回调
// POST /api/unlimit/callback，无法解析的回调体按空对象记为失败，支付失败与落库失败都不影响应答
func (cc *CallbackController) Unlimit(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Relay(c, http.StatusBadRequest, gin.H{"success": false, "error": "Unreadable body"})
		return
	}

	if _, err := cc.processor.Process(c.Request.Context(), types.GatewayUnlimit, &types.Callback{Body: body}); err != nil {
		logger.LogIf(err)
		response.Relay(c, http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	response.JSON(c, gin.H{"success": true})
}

// abortWithProcessError 错误类型 -> HTTP 状态码，响应中不出现密钥和密文
func abortWithProcessError(c *gin.Context, err error) {
	var (
		missing  *types.MissingFieldError
		notFound *types.CredentialNotFoundError
	)

	switch {
	case errors.As(err, &missing):
		response.AbortWithData(c, http.StatusBadRequest, missing.Error(), gin.H{"field": missing.Field})
	case errors.As(err, &notFound):
		response.AbortWithData(c, http.StatusInternalServerError, "No encryptionKey found for PAY_ID", gin.H{"pay_id": notFound.ID})
	case errors.Is(err, types.ErrDecrypt):
		response.Abort500(c, "Failed to decrypt ENCDATA")
	case errors.Is(err, types.ErrParse):
		response.Abort500(c, "Failed to parse decrypted payload")
	default:
		response.ServerError(c, err)
	}
}
