package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/model"
	"plan-it/backend/internal/service"
	"plan-it/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler 管理端 HTTP 处理器
// 路由组已挂载 JWTAuth + RequireAdmin
type AdminHandler struct {
	verifySvc service.VerificationService
	adminSvc  service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(verifySvc service.VerificationService, adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{verifySvc: verifySvc, adminSvc: adminSvc}
}

// ────────────────────── 学生 ──────────────────────

// ListStudents 学生列表
// GET /api/v1/admin/students?status=&keyword=&page=&page_size=
func (h *AdminHandler) ListStudents(c *gin.Context) {
	var req dto.VerificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.adminSvc.ListStudents(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// VerifyStudent 审核学生
// PUT /api/v1/admin/students/:id/verify
func (h *AdminHandler) VerifyStudent(c *gin.Context) {
	h.verify(c, model.UserTypeStudent)
}

// ExportStudents 导出学生名单
// GET /api/v1/admin/students/export?status=
func (h *AdminHandler) ExportStudents(c *gin.Context) {
	var req dto.VerificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	buf, filename, err := h.adminSvc.ExportStudents(c.Request.Context(), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ────────────────────── 商家 ──────────────────────

// ListBusinesses 商家列表（含名下地点/车辆数）
// GET /api/v1/admin/businesses?status=&keyword=&page=&page_size=
func (h *AdminHandler) ListBusinesses(c *gin.Context) {
	var req dto.VerificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.adminSvc.ListBusinesses(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateBusiness 管理员直接创建商家账号
// POST /api/v1/admin/businesses
func (h *AdminHandler) CreateBusiness(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.adminSvc.CreateBusiness(c.Request.Context(), &req, p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// CreateBusinessInvite 签发商家注册邀请码
// POST /api/v1/admin/businesses/invites
func (h *AdminHandler) CreateBusinessInvite(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.GenerateInviteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.adminSvc.CreateBusinessInvite(c.Request.Context(), &req, p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// VerifyBusiness 审核商家
// PUT /api/v1/admin/businesses/:id/verify
func (h *AdminHandler) VerifyBusiness(c *gin.Context) {
	h.verify(c, model.UserTypeBusiness)
}

// ────────────────────── 用户与概览 ──────────────────────

// AssignRole 分配角色（仅超级管理员）
// PUT /api/v1/admin/users/:id/role
func (h *AdminHandler) AssignRole(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.adminSvc.AssignRole(c.Request.Context(), c.Param("id"), &req, p); err != nil {
		respondError(c, err)
		return
	}
	response.OKMessage(c, "角色已更新")
}

// Dashboard 管理端概览统计
// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	result, err := h.adminSvc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// ── 内部 ──

func (h *AdminHandler) verify(c *gin.Context, category model.UserType) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var err error
	message := "学生审核状态已更新"
	if category == model.UserTypeBusiness {
		err = h.verifySvc.VerifyBusiness(c.Request.Context(), c.Param("id"), &req, p)
		message = "商家审核状态已更新"
	} else {
		err = h.verifySvc.VerifyStudent(c.Request.Context(), c.Param("id"), &req, p)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKMessage(c, message)
}
