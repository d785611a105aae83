package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"plan-it/backend/config"
	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	"plan-it/backend/pkg/response"
)

const (
	exportBatchSize = 500
	maxExportRows   = 10000
	tempPasswordLen = 12
	inviteCodeBytes = 6
)

// AdminService 管理端业务接口
type AdminService interface {
	ListStudents(ctx context.Context, req *dto.VerificationListRequest) (*dto.StudentListResponse, error)
	ListBusinesses(ctx context.Context, req *dto.VerificationListRequest) (*dto.BusinessListResponse, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	CreateBusiness(ctx context.Context, req *dto.CreateBusinessRequest, callerID string) (*dto.CreateBusinessResponse, error)
	CreateBusinessInvite(ctx context.Context, req *dto.GenerateInviteRequest, callerID string) (*dto.InviteResponse, error)
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, caller *model.Principal) error
	// ExportStudents 导出学生名单为 xlsx，status 为空时导出全部
	ExportStudents(ctx context.Context, status string) (*bytes.Buffer, string, error)
}

type adminService struct {
	cfg    *config.Config
	repo   *repository.Repository
	creds  *CredentialService
	logger *zap.Logger
	now    func() time.Time
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(
	cfg *config.Config,
	repo *repository.Repository,
	creds *CredentialService,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		cfg:    cfg,
		repo:   repo,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── ListStudents ──────────────────────

func (s *adminService) ListStudents(ctx context.Context, req *dto.VerificationListRequest) (*dto.StudentListResponse, error) {
	users, total, err := s.list(ctx, model.UserTypeStudent, req)
	if err != nil {
		return nil, err
	}

	students := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		students = append(students, dto.NewUserResponse(&users[i]))
	}

	return &dto.StudentListResponse{
		Students:   students,
		Pagination: response.NewPagination(total, req.GetPage(), req.GetPageSize()),
	}, nil
}

// ────────────────────── ListBusinesses ──────────────────────

func (s *adminService) ListBusinesses(ctx context.Context, req *dto.VerificationListRequest) (*dto.BusinessListResponse, error) {
	users, total, err := s.list(ctx, model.UserTypeBusiness, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}

	places, err := s.repo.Stats.CountPlacesByOwners(ctx, ids)
	if err != nil {
		s.logger.Error("统计商家地点失败", zap.Error(err))
		return nil, err
	}
	vehicles, err := s.repo.Stats.CountVehiclesByOwners(ctx, ids)
	if err != nil {
		s.logger.Error("统计商家车辆失败", zap.Error(err))
		return nil, err
	}

	businesses := make([]dto.BusinessResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		businesses = append(businesses, dto.BusinessResponse{
			UserResponse:  dto.NewUserResponse(u),
			PlacesCount:   places[u.UserID],
			VehiclesCount: vehicles[u.UserID],
		})
	}

	return &dto.BusinessListResponse{
		Businesses: businesses,
		Pagination: response.NewPagination(total, req.GetPage(), req.GetPageSize()),
	}, nil
}

func (s *adminService) list(ctx context.Context, userType model.UserType, req *dto.VerificationListRequest) ([]model.User, int64, error) {
	filters := &repository.UserListFilters{
		UserType: userType,
		Status:   model.VerificationStatus(req.Status),
		Keyword:  strings.TrimSpace(req.Keyword),
	}
	users, total, err := s.repo.User.ListWithFilters(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.String("user_type", string(userType)), zap.Error(err))
		return nil, 0, err
	}
	return users, total, nil
}

// ────────────────────── Dashboard ──────────────────────

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	counts, err := s.repo.User.CountByTypeAndStatus(ctx)
	if err != nil {
		s.logger.Error("统计用户失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{}
	for _, c := range counts {
		resp.TotalUsers += c.Count
		switch c.UserType {
		case model.UserTypeStudent:
			addToBreakdown(&resp.Students, c.Status, c.Count)
		case model.UserTypeBusiness:
			addToBreakdown(&resp.Businesses, c.Status, c.Count)
		case model.UserTypePublic:
			resp.PublicUsers += c.Count
		}
	}

	if resp.Admins, err = s.repo.User.CountAdmins(ctx); err != nil {
		s.logger.Error("统计管理员失败", zap.Error(err))
		return nil, err
	}
	if resp.Places, err = s.repo.Stats.CountPlaces(ctx); err != nil {
		s.logger.Error("统计地点失败", zap.Error(err))
		return nil, err
	}
	if resp.Vehicles, err = s.repo.Stats.CountVehicles(ctx); err != nil {
		s.logger.Error("统计车辆失败", zap.Error(err))
		return nil, err
	}
	if resp.Reviews, err = s.repo.Stats.CountReviews(ctx); err != nil {
		s.logger.Error("统计评价失败", zap.Error(err))
		return nil, err
	}

	return resp, nil
}

func addToBreakdown(b *dto.StatusBreakdown, status model.VerificationStatus, n int64) {
	b.Total += n
	switch status {
	case model.VerificationPending:
		b.Pending += n
	case model.VerificationApproved:
		b.Approved += n
	case model.VerificationRejected:
		b.Rejected += n
	}
}

// ────────────────────── CreateBusiness ──────────────────────

func (s *adminService) CreateBusiness(ctx context.Context, req *dto.CreateBusinessRequest, callerID string) (*dto.CreateBusinessResponse, error) {
	tempPassword, err := generateTempPassword(tempPasswordLen)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	hash, err := s.creds.Hash(tempPassword)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       hash,
		Phone:              strings.TrimSpace(req.Phone),
		UserType:           model.UserTypeBusiness,
		Role:               model.RoleUser,
		VerificationStatus: model.VerificationPending,
		MustChangePassword: true,
	}
	user.CreatedBy = &callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建商家账号失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("管理员创建商家账号", zap.String("user_id", user.UserID), zap.String("admin_id", callerID))

	return &dto.CreateBusinessResponse{
		User:         dto.NewUserResponse(user),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── CreateBusinessInvite ──────────────────────

func (s *adminService) CreateBusinessInvite(ctx context.Context, req *dto.GenerateInviteRequest, callerID string) (*dto.InviteResponse, error) {
	code, err := randomToken(inviteCodeBytes)
	if err != nil {
		s.logger.Error("生成邀请码失败", zap.Error(err))
		return nil, err
	}
	code = strings.ToUpper(code)

	ttl := s.cfg.Auth.InviteTTL
	if req != nil && req.ExpiresDays > 0 {
		ttl = time.Duration(req.ExpiresDays) * 24 * time.Hour
	}

	invite := &model.InviteCode{
		Code:      code,
		Purpose:   model.InvitePurposeBusiness,
		ExpiresAt: s.now().Add(ttl),
	}
	invite.CreatedBy = &callerID

	if err := s.repo.InviteCode.Create(ctx, invite); err != nil {
		s.logger.Error("保存邀请码失败", zap.Error(err))
		return nil, err
	}

	return &dto.InviteResponse{
		InviteCode: code,
		InviteURL:  fmt.Sprintf("%s/register?userType=business&inviteCode=%s", strings.TrimRight(s.cfg.Server.BaseURL, "/"), code),
		ExpiresAt:  invite.ExpiresAt,
	}, nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *adminService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, caller *model.Principal) error {
	if caller == nil || caller.Role != model.RoleSuperAdmin {
		return ErrSuperAdminRequired
	}
	if id == caller.UserID {
		return ErrSelfRoleChange
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		return ErrInvalidRole
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	// user_type=admin 的账号始终解析为管理员，只改 role 无法降级
	if user.UserType == model.UserTypeAdmin && role == model.RoleUser {
		return ErrAdminTypeDemotion
	}

	if err := s.repo.User.UpdateRole(ctx, id, role, caller.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("角色已变更",
		zap.String("id", id),
		zap.String("from", string(user.Role)),
		zap.String("to", string(role)),
		zap.String("admin_id", caller.UserID),
	)
	return nil
}

// ────────────────────── ExportStudents ──────────────────────

func (s *adminService) ExportStudents(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	filters := &repository.UserListFilters{
		UserType: model.UserTypeStudent,
		Status:   model.VerificationStatus(status),
	}

	var students []model.User
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.repo.User.ListWithFilters(ctx, filters, offset, exportBatchSize)
		if err != nil {
			s.logger.Error("查询导出数据失败", zap.Error(err))
			return nil, "", err
		}
		if total > maxExportRows {
			return nil, "", ErrExportTooManyRows
		}
		students = append(students, batch...)
		if len(batch) < exportBatchSize || int64(len(students)) >= total {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	headers := []interface{}{"Name", "Email", "VIT-AP ID", "Year", "Branch", "Status", "Reason", "Email Verified", "Registered At"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, headerStyle)
	}

	for i, u := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		row := []interface{}{
			u.Name,
			u.Email,
			u.VitapID,
			u.Year,
			u.Branch,
			string(u.VerificationStatus),
			u.VerificationReason,
			u.IsEmailVerified,
			u.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", err
		}
	}
	_ = f.SetColWidth(sheet, "A", "I", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", err
	}

	suffix := "all"
	if status != "" {
		suffix = status
	}
	filename := fmt.Sprintf("students_%s_%s.xlsx", suffix, s.now().Format("20060102"))
	return buf, filename, nil
}
