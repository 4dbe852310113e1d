// Package catalog 网关与业务目录
package catalog

import (
	"github.com/gin-gonic/gin"

	catalogmodel "paydash/app/models/catalog"
	"paydash/app/repositories"
	"paydash/pkg/response"
)

type CatalogController struct {
	terminals *repositories.TerminalRepository
}

func NewCatalogController(terminals *repositories.TerminalRepository) *CatalogController {
	return &CatalogController{terminals: terminals}
}

// Gateways GET /v1/gateways
func (cc *CatalogController) Gateways(c *gin.Context) {
	response.Data(c, catalogmodel.Gateways())
}

// Gateway 网关详情以及已配置终端的业务
// GET /v1/gateways/:gateway
func (cc *CatalogController) Gateway(c *gin.Context) {
	gateway, ok := catalogmodel.FindGateway(c.Param("gateway"))
	if !ok {
		response.Abort404(c, "网关不存在")
		return
	}

	ids, err := cc.terminals.UtilitiesWithTerminals(c.Request.Context(), gateway.ID)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	enabled := make([]catalogmodel.Utility, 0, len(ids))
	for _, id := range ids {
		if u, ok := catalogmodel.FindUtility(id); ok && gateway.Supports(id) {
			enabled = append(enabled, u)
		}
	}

	response.Data(c, gin.H{
		"gateway":   gateway,
		"utilities": enabled,
	})
}

// Utilities GET /v1/utilities
func (cc *CatalogController) Utilities(c *gin.Context) {
	response.Data(c, catalogmodel.Utilities())
}
