// Package catalog 内置的网关与业务目录
package catalog

// Gateway 网关展示信息
type Gateway struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	DisplayName        string   `json:"displayName"`
	Logo               string   `json:"logo"`
	Description        string   `json:"description"`
	Status             string   `json:"status"`
	SupportedUtilities []string `json:"supportedUtilities"`
}

// Utility 业务类型
type Utility struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var gateways = []Gateway{
	{
		ID:                 "pay10",
		Name:               "pay10",
		DisplayName:        "Pay10",
		Logo:               "/logos/pay10.jpg",
		Description:        "Fast and secure payment processing",
		Status:             "active",
		SupportedUtilities: []string{"utility", "electricity", "education", "fastag"},
	},
	{
		ID:                 "unlimit",
		Name:               "UnLimit",
		DisplayName:        "UnLimit",
		Logo:               "/logos/unlimit.png",
		Description:        "Unlimited payment solutions",
		Status:             "active",
		SupportedUtilities: []string{"utility", "electricity", "education"},
	},
	{
		ID:                 "zwitch",
		Name:               "zwitch",
		DisplayName:        "Zwitch",
		Logo:               "/logos/zwitch.png",
		Description:        "Smart payment gateway",
		Status:             "active",
		SupportedUtilities: []string{"electricity", "fastag"},
	},
	{
		ID:                 "sabpaisa",
		Name:               "SabPaisa",
		DisplayName:        "SabPaisa",
		Logo:               "/logos/sabpaisa.png",
		Description:        "SabPaisa payment gateway",
		Status:             "active",
		SupportedUtilities: []string{"utility", "electricity", "education", "fastag"},
	},
}

var utilities = []Utility{
	{ID: "utility", Name: "utility", DisplayName: "Utility Bills", Icon: "Wrench", Description: "Pay water, gas, and other utility bills", Category: "Essential Services"},
	{ID: "electricity", Name: "electricity", DisplayName: "Electricity", Icon: "Zap", Description: "Pay electricity bills instantly", Category: "Essential Services"},
	{ID: "education", Name: "education", DisplayName: "Education Fees", Icon: "GraduationCap", Description: "Pay school and college fees", Category: "Education"},
	{ID: "fastag", Name: "fastag", DisplayName: "FASTag Recharge", Icon: "Truck", Description: "Recharge your FASTag account", Category: "Transportation"},
}

// Gateways 全部网关
func Gateways() []Gateway {
	out := make([]Gateway, len(gateways))
	copy(out, gateways)
	return out
}

// Utilities 全部业务
func Utilities() []Utility {
	out := make([]Utility, len(utilities))
	copy(out, utilities)
	return out
}

// UtilityIDs 业务 ID 列表，用于请求校验
func UtilityIDs() []string {
	ids := make([]string, 0, len(utilities))
	for _, u := range utilities {
		ids = append(ids, u.ID)
	}
	return ids
}

// FindGateway 按 ID 查找网关
func FindGateway(id string) (Gateway, bool) {
	for _, g := range gateways {
		if g.ID == id {
			return g, true
		}
	}
	return Gateway{}, false
}

// FindUtility 按 ID 查找业务
func FindUtility(id string) (Utility, bool) {
	for _, u := range utilities {
		if u.ID == id {
			return u, true
		}
	}
	return Utility{}, false
}

// Supports 网关是否支持该业务
func (g Gateway) Supports(utility string) bool {
	for _, u := range g.SupportedUtilities {
		if u == utility {
			return true
		}
	}
	return false
}
