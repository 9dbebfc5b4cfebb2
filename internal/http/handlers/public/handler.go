package public

import "github.com/ecomatch/internal/provider"

// Handler 公开接口处理器入口
// 说明：该处理器用于客户与配送员侧 API，身份鉴权由上游网关负责。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
