package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StudyGate/internal/model/dto"
	"StudyGate/internal/service"
	"StudyGate/pkg/response"
)

// IssueToken 签发访问令牌
// POST /v1/auth/token
//
// grant_type = external_ref 由外部平台带 secret 为学生换取令牌
// grant_type = refresh_token 由客户端刷新
func IssueToken(ctx context.Context, c *app.RequestContext) {
	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Auth().IssueToken(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
