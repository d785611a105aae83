package dto

import (
	"time"

	"plan-it/backend/pkg/response"
)

// ── 管理端 DTO ──

// VerificationListRequest 学生/商家列表查询参数
type VerificationListRequest struct {
	PaginationRequest
	Status  string `form:"status"  binding:"omitempty,oneof=pending approved rejected"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// VerifyRequest 审核请求；status 由业务层校验以返回字段名
type VerifyRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason" binding:"max=500"`
}

// StudentListResponse 学生列表
type StudentListResponse struct {
	Students   []UserResponse      `json:"students"`
	Pagination response.Pagination `json:"pagination"`
}

// BusinessResponse 商家信息及名下资源统计
type BusinessResponse struct {
	UserResponse
	PlacesCount   int64 `json:"placesCount"`
	VehiclesCount int64 `json:"vehiclesCount"`
}

// BusinessListResponse 商家列表
type BusinessListResponse struct {
	Businesses []BusinessResponse  `json:"businesses"`
	Pagination response.Pagination `json:"pagination"`
}

// CreateBusinessRequest 管理员直接创建商家账号
type CreateBusinessRequest struct {
	Name  string `json:"name"  binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

// CreateBusinessResponse 临时密码只返回一次
type CreateBusinessResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"tempPassword"`
}

// GenerateInviteRequest 生成商家邀请码请求
type GenerateInviteRequest struct {
	ExpiresDays int `json:"expiresDays" binding:"omitempty,min=1,max=30"` // 0 使用配置默认值
}

// InviteResponse 邀请码响应
type InviteResponse struct {
	InviteCode string    `json:"inviteCode"`
	InviteURL  string    `json:"inviteUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin super_admin"`
}

// StatusBreakdown 按审核状态拆分的计数
type StatusBreakdown struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// DashboardResponse 管理端概览
type DashboardResponse struct {
	TotalUsers  int64           `json:"totalUsers"`
	Students    StatusBreakdown `json:"students"`
	Businesses  StatusBreakdown `json:"businesses"`
	PublicUsers int64           `json:"publicUsers"`
	Admins      int64           `json:"admins"`
	Places      int64           `json:"places"`
	Vehicles    int64           `json:"vehicles"`
	Reviews     int64           `json:"reviews"`
}
