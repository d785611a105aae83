package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.total, 1, tt.pageSize)
		if p.TotalPages != tt.want {
			t.Errorf("total=%d pageSize=%d 期望 totalPages=%d，实际=%d", tt.total, tt.pageSize, tt.want, p.TotalPages)
		}
	}
}

func TestErrorWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithDetails(c, http.StatusBadRequest, CodeParamError, "邮箱格式不正确", "email")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if resp.Code != CodeParamError || resp.Details != "email" {
		t.Errorf("期望 code=%d details=email，实际 code=%d details=%s", CodeParamError, resp.Code, resp.Details)
	}
}
