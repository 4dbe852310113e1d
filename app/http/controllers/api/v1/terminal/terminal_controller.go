// Package terminal 终端配置管理
package terminal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"paydash/app/models/catalog"
	terminalmodel "paydash/app/models/terminal"
	"paydash/app/repositories"
	"paydash/app/requests"
	"paydash/pkg/response"
)

// TerminalController 终端控制器
type TerminalController struct {
	terminals *repositories.TerminalRepository
}

// NewTerminalController 创建终端控制器
func NewTerminalController(terminals *repositories.TerminalRepository) *TerminalController {
	return &TerminalController{terminals: terminals}
}

// Index 列出网关下的终端，密钥脱敏
// GET /v1/gateways/:gateway/terminals
func (tc *TerminalController) Index(c *gin.Context) {
	gateway, ok := catalog.FindGateway(c.Param("gateway"))
	if !ok {
		response.Abort404(c, "网关不存在")
		return
	}

	list, err := tc.terminals.List(c.Request.Context(), gateway.ID)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	views := make([]terminalmodel.MaskedView, 0, len(list))
	for i := range list {
		views = append(views, list[i].Masked())
	}
	response.Data(c, views)
}

// Update 按 网关 + 名称 创建或更新终端
// PUT /v1/gateways/:gateway/terminals/:name
func (tc *TerminalController) Update(c *gin.Context) {
	gateway, ok := catalog.FindGateway(c.Param("gateway"))
	if !ok {
		response.Abort404(c, "网关不存在")
		return
	}

	req, err := requests.ValidateTerminal(c)
	if err != nil {
		var verr requests.ValidationError
		if errors.As(err, &verr) {
			response.ValidationError(c, verr.Errors)
			return
		}
		response.BadRequest(c, err)
		return
	}
	if !gateway.Supports(req.UtilityID) {
		response.ValidationError(c, map[string][]string{"utility_id": {"该网关不支持此业务"}})
		return
	}

	t := &terminalmodel.Terminal{
		Gateway:          gateway.ID,
		Name:             c.Param("name"),
		UtilityID:        req.UtilityID,
		PayloadID:        req.PayloadID,
		SecretKey:        req.SecretKey,
		EncryptionKey:    req.EncryptionKey,
		APIBase:          req.APIBase,
		TerminalCode:     req.TerminalCode,
		TerminalPassword: req.TerminalPassword,
		Extra:            req.Extra,
	}
	if missing := t.MissingFields(); len(missing) > 0 {
		errs := make(map[string][]string, len(missing))
		for _, field := range missing {
			errs[field] = []string{field + " 不能为空"}
		}
		response.ValidationError(c, errs)
		return
	}

	if err := tc.terminals.Save(c.Request.Context(), t); err != nil {
		response.ServerError(c, err)
		return
	}

	response.Data(c, t.Masked())
}

// Destroy 删除终端
// DELETE /v1/gateways/:gateway/terminals/:name
func (tc *TerminalController) Destroy(c *gin.Context) {
	err := tc.terminals.Delete(c.Request.Context(), c.Param("gateway"), c.Param("name"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "终端不存在")
			return
		}
		response.ServerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
