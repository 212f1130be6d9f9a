package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"

	"StudyGate/config"
	"StudyGate/pkg/errors"
	"StudyGate/pkg/response"
)

// WorkflowSecretMiddleware 校验外部调度工作流的回调请求
// 密钥通过 X-Workflow-Secret 头传递，常量时间比较
func WorkflowSecretMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		secret := c.GetHeader("X-Workflow-Secret")

		if subtle.ConstantTimeCompare(secret, []byte(config.Cfg.WorkflowSecret)) != 1 {
			c.Abort()
			response.Error(ctx, c, errors.WorkflowSecretInvalid)
			return
		}

		c.Next(ctx)
	}
}
