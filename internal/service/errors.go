package service

import (
	pkgerrors "plan-it/backend/pkg/errors"
)

// ── 认证模块业务错误 ──

var (
	// ErrInvalidCredentials 邮箱不存在与密码错误使用同一错误，避免枚举账号
	ErrInvalidCredentials       = pkgerrors.Authentication("邮箱或密码错误")
	ErrEmailExists              = pkgerrors.Conflict("该邮箱已注册")
	ErrUserNotFound             = pkgerrors.NotFound("用户不存在")
	ErrPrincipalNotFound        = pkgerrors.Authentication("用户不存在或已被删除")
	ErrTokenExpired             = pkgerrors.InvalidToken("Token 已过期")
	ErrTokenInvalid             = pkgerrors.InvalidToken("Token 无效")
	ErrInvalidVerificationToken = pkgerrors.Validation("token", "验证链接无效或已过期")
	ErrEmailAlreadyVerified     = pkgerrors.Conflict("邮箱已验证")
	ErrOldPasswordMismatch      = pkgerrors.Validation("oldPassword", "原密码错误")
	ErrPasswordUnchanged        = pkgerrors.Validation("newPassword", "新密码不能与原密码相同")
	ErrInviteCodeInvalid        = pkgerrors.Validation("inviteCode", "邀请码无效、已使用或已过期")
)

// ── 管理模块业务错误 ──

var (
	ErrAdminRequired      = pkgerrors.Authorization("需要管理员权限")
	ErrSuperAdminRequired = pkgerrors.Authorization("仅超级管理员可分配角色")
	ErrSelfRoleChange     = pkgerrors.Validation("id", "不能修改自己的角色")
	ErrInvalidRole        = pkgerrors.Validation("role", "role 须为 user、admin 或 super_admin")
	ErrInvalidStatus      = pkgerrors.Validation("status", "status 须为 approved 或 rejected")
	ErrStudentNotFound    = pkgerrors.NotFound("学生不存在")
	ErrBusinessNotFound   = pkgerrors.NotFound("商家不存在")
	ErrAdminTypeDemotion  = pkgerrors.Validation("role", "管理员类型账号不能降级为普通用户")
	ErrExportTooManyRows  = pkgerrors.Validation("status", "导出数据超过上限，请缩小筛选范围")
)
