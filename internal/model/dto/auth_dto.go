package dto

// ========== Auth 相关 DTO ==========

// TokenRequest 换取访问令牌
// grant_type = external_ref 时校验 secret，refresh_token 时校验刷新令牌
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ExternalRef  string `json:"external_ref,omitempty"`
	Secret       string `json:"secret,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenResponse 令牌响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
