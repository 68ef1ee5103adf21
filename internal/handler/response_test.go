package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/ivp/internal/logic"
	"github.com/gin-gonic/gin"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"校验错误", logic.NewValidationError("字段A无效", "字段B无效"), http.StatusBadRequest},
		{"重复冲突", &logic.DuplicateError{Message: "已存在同名产品"}, http.StatusBadRequest},
		{"记录不存在", &logic.NotFoundError{Message: "产品不存在"}, http.StatusNotFound},
		{"存储不可用", &logic.StoreUnavailableError{Cause: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if resp.Success {
				t.Error("error response reported success=true")
			}
		})
	}
}

func TestHandleErrorValidationCollectsMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, logic.NewValidationError("字段A无效", "字段B无效"))

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("errors len = %d, want 2", len(resp.Errors))
	}
}
