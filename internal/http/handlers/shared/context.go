package shared

import (
	"strconv"

	"github.com/ecomatch/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ParseUintParam 解析路径中的数字 ID，非法时直接回写 400。
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(value), true
}
