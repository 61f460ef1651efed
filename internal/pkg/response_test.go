package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/crudbase/internal/notification"
)

func TestStatusOfPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		types  []notification.Type
		status int
		mapped bool
	}{
		{"no notices", nil, 0, false},
		{"warning only", []notification.Type{notification.Warning}, 0, false},
		{"info", []notification.Type{notification.Info}, http.StatusOK, true},
		{"error", []notification.Type{notification.Error}, http.StatusInternalServerError, true},
		{"validation", []notification.Type{notification.Validation}, http.StatusInternalServerError, true},
		{"authentication", []notification.Type{notification.Authentication}, http.StatusUnauthorized, true},
		{"authorization", []notification.Type{notification.Authorization}, http.StatusForbidden, true},
		{"not found", []notification.Type{notification.NotFound}, http.StatusNotFound, true},
		{"validation beats not found", []notification.Type{notification.NotFound, notification.Validation}, http.StatusInternalServerError, true},
		{"authentication beats authorization", []notification.Type{notification.Authorization, notification.Authentication}, http.StatusUnauthorized, true},
		{"authorization beats not found", []notification.Type{notification.NotFound, notification.Authorization}, http.StatusForbidden, true},
		{"error beats everything", []notification.Type{notification.Info, notification.NotFound, notification.Authentication, notification.Error}, http.StatusInternalServerError, true},
		{"info beats plain success only", []notification.Type{notification.Info, notification.Warning}, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := notification.NewManager()
			for _, typ := range tt.types {
				m.AddTyped("msg", typ)
			}
			status, ok := StatusOf(m)
			if ok != tt.mapped {
				t.Fatalf("ok = %v, want %v", ok, tt.mapped)
			}
			if ok && status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
		})
	}
}

func respondRecorder(m *notification.Manager, result any, err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Respond(c, m, result, err)
	return w
}

func decodeNotices(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var notices []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &notices); err != nil {
		t.Fatalf("body is not a notice list: %v\n%s", err, w.Body.String())
	}
	return notices
}

func TestRespondUnexpectedError(t *testing.T) {
	m := notification.NewManager()
	m.AddTyped("heads up", notification.Info)

	w := respondRecorder(m, "ignored", errors.New("db down"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	notices := decodeNotices(t, w)
	// Full accumulated list, not just the triggering error.
	if len(notices) != 2 {
		t.Fatalf("got %d notices, want 2", len(notices))
	}
	if notices[0]["message"] != "heads up" || notices[1]["type"] != "error" {
		t.Errorf("notices = %v", notices)
	}
}

func TestRespondMappedStatus(t *testing.T) {
	m := notification.NewManager()
	m.AddTyped("heads up", notification.Info)
	m.AddValidation("name is required")

	w := respondRecorder(m, "ignored", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if notices := decodeNotices(t, w); len(notices) != 2 {
		t.Errorf("got %d notices, want the full list of 2", len(notices))
	}
}

func TestRespondInfoNotices(t *testing.T) {
	m := notification.NewManager()
	m.AddTyped("created with defaults", notification.Info)

	w := respondRecorder(m, "ignored", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if notices := decodeNotices(t, w); notices[0]["type"] != "info" {
		t.Errorf("notices = %v", notices)
	}
}

func TestRespondPlainSuccess(t *testing.T) {
	w := respondRecorder(notification.NewManager(), map[string]string{"name": "x"}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"name":"x"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRespondNilResult(t *testing.T) {
	w := respondRecorder(notification.NewManager(), nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestBindAndNotify(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type form struct {
		Name  string `json:"name" binding:"required,min=2"`
		Email string `json:"email" binding:"required,email"`
	}

	tests := []struct {
		name       string
		body       string
		ok         bool
		numNotices int
	}{
		{"valid", `{"name":"Ann","email":"ann@example.com"}`, true, 0},
		{"both invalid", `{"name":"","email":"nope"}`, false, 2},
		{"malformed json", `{`, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			m := notification.NewManager()
			var f form
			ok := BindAndNotify(c, m, &f)

			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got := len(m.List()); got != tt.numNotices {
				t.Fatalf("got %d notices, want %d: %v", got, tt.numNotices, m.List())
			}
			for _, n := range m.List() {
				if n.Type != notification.Validation {
					t.Errorf("notice type = %v, want validation", n.Type)
				}
			}
		})
	}
}

func TestBindAndNotifyUsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type form struct {
		FullName string `json:"full_name" binding:"required"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	m := notification.NewManager()
	var f form
	BindAndNotify(c, m, &f)

	if len(m.List()) != 1 || !strings.HasPrefix(m.List()[0].Message, "full_name:") {
		t.Errorf("notices = %v, want a full_name validation message", m.List())
	}
}

func TestParsePageRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PageRequest
	}{
		{"", PageRequest{}},
		{"page=3&page_size=25", PageRequest{Page: 3, PageSize: 25}},
		{"order_by=name&asc=true", PageRequest{OrderColumn: "name", OrderAscending: true}},
		{"page=abc&page_size=-", PageRequest{}},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if got := ParsePageRequest(c); got != tt.want {
			t.Errorf("query %q: got %+v, want %+v", tt.query, got, tt.want)
		}
	}
}
