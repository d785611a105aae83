package dto

import (
	"time"

	"plan-it/backend/internal/model"
)

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	UserType           string     `json:"userType"`
	Role               string     `json:"role"`
	IsEmailVerified    bool       `json:"isEmailVerified"`
	VerificationStatus string     `json:"verificationStatus"`
	VerificationReason string     `json:"verificationReason,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
	VitapID            string     `json:"vitapId,omitempty"`
	Year               string     `json:"year,omitempty"`
	Branch             string     `json:"branch,omitempty"`
	MustChangePassword bool       `json:"mustChangePassword"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// NewUserResponse 由模型构造响应，不包含密码哈希
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                 u.UserID,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		UserType:           string(u.UserType),
		Role:               string(model.NewPrincipal(u).Role),
		IsEmailVerified:    u.IsEmailVerified,
		VerificationStatus: string(u.VerificationStatus),
		VerificationReason: u.VerificationReason,
		VerifiedAt:         u.VerifiedAt,
		VitapID:            u.VitapID,
		Year:               u.Year,
		Branch:             u.Branch,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
	}
}
