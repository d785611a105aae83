package service

import (
	"testing"

	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/model"
	pkgerrors "plan-it/backend/pkg/errors"
)

func validStudentRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@vitapstudent.ac.in",
		Password: "password123",
		UserType: "student",
		VitapID:  "21BCE1000",
		Year:     "2",
		Branch:   "CSE",
	}
}

// 学生邮箱域名校验不区分大小写
func TestRegistrationPolicy_StudentDomainGate(t *testing.T) {
	p := NewRegistrationPolicy("vitapstudent.ac.in")

	tests := []struct {
		email     string
		wantField string
	}{
		{"jane@vitapstudent.ac.in", ""},
		{"a@VITAPSTUDENT.AC.IN", ""},
		{"Mixed@VitapStudent.Ac.In", ""},
		{"a@gmail.com", "email"},
		{"a@vitapstudent.ac.in.evil.com", "email"},
		{"a@notvitapstudent.ac.in", "email"},
		{"not-an-email", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			req := validStudentRequest()
			req.Email = tt.email

			userType, err := p.Validate(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("期望通过，实际: %v", err)
				}
				if userType != model.UserTypeStudent {
					t.Errorf("期望 userType=student，实际=%s", userType)
				}
				return
			}
			assertValidationField(t, err, tt.wantField)
		})
	}
}

func TestRegistrationPolicy_StudentRequiredFields(t *testing.T) {
	p := NewRegistrationPolicy("vitapstudent.ac.in")

	tests := []struct {
		name   string
		mutate func(r *dto.RegisterRequest)
		field  string
	}{
		{"缺少 vitapId", func(r *dto.RegisterRequest) { r.VitapID = "" }, "vitapId"},
		{"缺少 year", func(r *dto.RegisterRequest) { r.Year = "  " }, "year"},
		{"缺少 branch", func(r *dto.RegisterRequest) { r.Branch = "" }, "branch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validStudentRequest()
			tt.mutate(req)
			_, err := p.Validate(req)
			assertValidationField(t, err, tt.field)
		})
	}
}

// 错误域名与缺失字段同时存在时，先报告域名
func TestRegistrationPolicy_DomainReportedBeforeMissingFields(t *testing.T) {
	p := NewRegistrationPolicy("vitapstudent.ac.in")
	req := validStudentRequest()
	req.Email = "jane@gmail.com"
	req.VitapID = ""

	_, err := p.Validate(req)
	assertValidationField(t, err, "email")
}

func TestRegistrationPolicy_UserTypes(t *testing.T) {
	p := NewRegistrationPolicy("@VITAPSTUDENT.AC.IN")

	tests := []struct {
		name      string
		req       dto.RegisterRequest
		wantType  model.UserType
		wantField string
	}{
		{
			name:     "public 任意邮箱",
			req:      dto.RegisterRequest{Name: "Pat", Email: "pat@gmail.com", Password: "password123", UserType: "public"},
			wantType: model.UserTypePublic,
		},
		{
			name:     "business 带邀请码",
			req:      dto.RegisterRequest{Name: "Shop", Email: "shop@gmail.com", Password: "password123", UserType: "Business", InviteCode: "ABC"},
			wantType: model.UserTypeBusiness,
		},
		{
			name:      "business 缺少邀请码",
			req:       dto.RegisterRequest{Name: "Shop", Email: "shop@gmail.com", Password: "password123", UserType: "business"},
			wantField: "inviteCode",
		},
		{
			name:      "admin 不能自助注册",
			req:       dto.RegisterRequest{Name: "Eve", Email: "eve@gmail.com", Password: "password123", UserType: "admin"},
			wantField: "userType",
		},
		{
			name:      "未知类型",
			req:       dto.RegisterRequest{Name: "Eve", Email: "eve@gmail.com", Password: "password123", UserType: "vip"},
			wantField: "userType",
		},
		{
			name:      "密码过短",
			req:       dto.RegisterRequest{Name: "Pat", Email: "pat@gmail.com", Password: "short", UserType: "public"},
			wantField: "password",
		},
		{
			name:      "姓名过短",
			req:       dto.RegisterRequest{Name: "P", Email: "pat@gmail.com", Password: "password123", UserType: "public"},
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userType, err := p.Validate(&tt.req)
			if tt.wantField != "" {
				assertValidationField(t, err, tt.wantField)
				return
			}
			if err != nil {
				t.Fatalf("期望通过，实际: %v", err)
			}
			if userType != tt.wantType {
				t.Errorf("期望 userType=%s，实际=%s", tt.wantType, userType)
			}
		})
	}
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("期望字段 %s 校验失败，实际通过", field)
	}
	e, ok := pkgerrors.As(err)
	if !ok || e.Kind != pkgerrors.KindValidation {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if e.Field != field {
		t.Errorf("期望失败字段=%s，实际=%s（%s）", field, e.Field, e.Message)
	}
}
