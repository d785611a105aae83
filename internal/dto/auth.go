package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
// 字段级规则（邮箱域名、学生必填项、邀请码）由注册策略校验，便于返回具体字段名
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	UserType   string `json:"userType"`
	VitapID    string `json:"vitapId"`
	Year       string `json:"year"`
	Branch     string `json:"branch"`
	InviteCode string `json:"inviteCode"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"      binding:"required"`
	Password   string `json:"password"   binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"` // 非 Cookie 模式时使用
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// TokenResponse 登录/注册成功响应
type TokenResponse struct {
	User         UserResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int          `json:"expiresIn"` // Access Token 有效期（秒）
}
