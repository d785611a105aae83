package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/model"
	pkgerrors "plan-it/backend/pkg/errors"
)

const (
	minNameLen     = 2
	maxNameLen     = 100
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt 只处理前 72 字节
	maxPhoneLen    = 20
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationPolicy 注册规则
// 所有失败都返回带字段名的 ValidationError，前端据此提示具体问题
type RegistrationPolicy struct {
	studentDomain string // 小写，不含 "@"
}

// NewRegistrationPolicy 创建注册规则，domain 如 "vitapstudent.ac.in"
func NewRegistrationPolicy(studentDomain string) *RegistrationPolicy {
	d := strings.ToLower(strings.TrimSpace(studentDomain))
	return &RegistrationPolicy{studentDomain: strings.TrimPrefix(d, "@")}
}

// StudentDomain 学生邮箱域名
func (p *RegistrationPolicy) StudentDomain() string { return p.studentDomain }

// IsStudentEmail 邮箱是否属于学生域名（不区分大小写）
func (p *RegistrationPolicy) IsStudentEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+p.studentDomain)
}

// Validate 校验注册请求，返回规范化后的用户类型
func (p *RegistrationPolicy) Validate(req *dto.RegisterRequest) (model.UserType, error) {
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Name)); n < minNameLen || n > maxNameLen {
		return "", pkgerrors.Validation("name", fmt.Sprintf("姓名长度需为 %d-%d 个字符", minNameLen, maxNameLen))
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return "", pkgerrors.Validation("email", "邮箱格式不正确")
	}
	if n := len(req.Password); n < minPasswordLen || n > maxPasswordLen {
		return "", pkgerrors.Validation("password", fmt.Sprintf("密码长度需为 %d-%d 位", minPasswordLen, maxPasswordLen))
	}
	if len(strings.TrimSpace(req.Phone)) > maxPhoneLen {
		return "", pkgerrors.Validation("phone", "手机号过长")
	}

	userType := model.UserType(strings.ToLower(strings.TrimSpace(req.UserType)))
	switch userType {
	case model.UserTypeStudent:
		if err := p.validateStudent(req); err != nil {
			return "", err
		}
	case model.UserTypePublic:
	case model.UserTypeBusiness:
		if strings.TrimSpace(req.InviteCode) == "" {
			return "", pkgerrors.Validation("inviteCode", "商家注册须提供管理员签发的邀请码")
		}
	case model.UserTypeAdmin:
		return "", pkgerrors.Validation("userType", "管理员账号不能自助注册")
	default:
		return "", pkgerrors.Validation("userType", "userType 须为 student、public 或 business")
	}

	return userType, nil
}

// validateStudent 先校验域名再校验必填项，两类失败提示不同
func (p *RegistrationPolicy) validateStudent(req *dto.RegisterRequest) error {
	if !p.IsStudentEmail(req.Email) {
		return pkgerrors.Validation("email", fmt.Sprintf("学生注册须使用 @%s 邮箱", p.studentDomain))
	}

	required := []struct {
		field string
		value string
	}{
		{"vitapId", req.VitapID},
		{"year", req.Year},
		{"branch", req.Branch},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return pkgerrors.Validation(r.field, fmt.Sprintf("学生注册须填写 %s", r.field))
		}
	}
	return nil
}
