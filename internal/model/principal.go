package model

// Role 授权角色
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole 解析角色字符串，未知值返回 false
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

// IsAdmin admin 与 super_admin 均可访问管理接口
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Principal 已认证调用方的身份，每个请求从存储中解析一次
type Principal struct {
	UserID             string
	Role               Role
	UserType           UserType
	VerificationStatus VerificationStatus
}

// NewPrincipal 由当前存储的用户记录构造 Principal
// 历史数据中 user_type=admin 但 role=user 的账号在这里统一提升为 RoleAdmin
func NewPrincipal(u *User) *Principal {
	role, ok := ParseRole(string(u.Role))
	if !ok {
		role = RoleUser
	}
	if u.UserType == UserTypeAdmin && role == RoleUser {
		role = RoleAdmin
	}
	return &Principal{
		UserID:             u.UserID,
		Role:               role,
		UserType:           u.UserType,
		VerificationStatus: u.VerificationStatus,
	}
}
