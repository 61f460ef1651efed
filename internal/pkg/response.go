package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/crudbase/internal/notification"
)

// ParsePageRequest extracts paging parameters from the query string:
// page, page_size, order_by, asc. Absent or malformed numbers fall back to
// zero, which the repository treats as page 1 and an unbounded page size.
func ParsePageRequest(c *gin.Context) PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	asc, _ := strconv.ParseBool(c.DefaultQuery("asc", "false"))
	return PageRequest{
		Page:           page,
		PageSize:       pageSize,
		OrderColumn:    c.Query("order_by"),
		OrderAscending: asc,
	}
}

// StatusOf maps the accumulated notifications to an HTTP status code.
// The precedence is fixed: Error or Validation first, then Authentication,
// Authorization, NotFound, and finally Info. It returns ok=false when no
// notification demands a mapping, i.e. the operation is a plain success.
func StatusOf(m *notification.Manager) (status int, ok bool) {
	switch {
	case m.AnyOf(notification.Error, notification.Validation):
		return http.StatusInternalServerError, true
	case m.AnyOf(notification.Authentication):
		return http.StatusUnauthorized, true
	case m.AnyOf(notification.Authorization):
		return http.StatusForbidden, true
	case m.AnyOf(notification.NotFound):
		return http.StatusNotFound, true
	case m.AnyOf(notification.Info):
		return http.StatusOK, true
	}
	return 0, false
}

// Respond emits exactly one outcome for a settled operation.
//
// An unexpected err is captured as an Error notification and the response is
// always 500 with the full accumulated notification list as the body, never
// just the triggering notice. Otherwise the notification mapping decides: a
// mapped status returns the full list; no mapping returns 200 with result
// (or a bare 200 when result is nil).
func Respond(c *gin.Context, m *notification.Manager, result any, err error) {
	if err != nil {
		m.AddError(err)
		c.JSON(http.StatusInternalServerError, m.List())
		return
	}

	if status, ok := StatusOf(m); ok {
		c.JSON(status, m.List())
		return
	}

	if result == nil {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BindAndNotify binds the request body to obj. Binding and validation
// failures become Validation notifications (one per failing field) and the
// function returns false; the caller responds through Respond so the notice
// protocol decides the status. JSON struct tags are preferred for field names.
//
// Usage in handlers:
//
//	if !pkg.BindAndNotify(c, nm, &req) {
//		pkg.Respond(c, nm, nil, nil)
//		return
//	}
func BindAndNotify(c *gin.Context, m *notification.Manager, obj any) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		m.AddValidation(err.Error())
		return false
	}

	jsonTags := buildJSONTagMap(obj)
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		msg := name + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		m.AddValidation(msg)
	}
	return false
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if name := parseJSONTagName(tag); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
