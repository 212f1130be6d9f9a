package service

import (
	"context"
	"crypto/subtle"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"StudyGate/config"
	"StudyGate/internal/model/dto"
	pkgerrors "StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/token"
)

type AuthService struct{}

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{}
	})
	return authService
}

// IssueToken 签发令牌
// external_ref 模式由外部平台持 workflow secret 为学生换取令牌，
// refresh_token 模式由客户端自行续期
func (s *AuthService) IssueToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	var studentID string

	switch req.GrantType {
	case "refresh_token":
		sid, err := token.ValidateRefreshToken(req.RefreshToken)
		if err != nil {
			logger.Logger.Info("Refresh token rejected", zap.Error(err))
			return nil, pkgerrors.Unauthorized
		}
		studentID = sid

	case "external_ref", "":
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(config.Cfg.WorkflowSecret)) != 1 {
			return nil, pkgerrors.WorkflowSecretInvalid
		}

		student, err := Student().GetByExternalRef(ctx, req.ExternalRef)
		if err != nil {
			return nil, err
		}
		studentID = strconv.FormatInt(student.PublicID, 10)

	default:
		return nil, pkgerrors.Unauthorized
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(studentID)
	if err != nil {
		logger.Logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}
