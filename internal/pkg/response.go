package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mosaic-hrd/website/internal/domain"
)

// Response is the JSON envelope of every /api/v1 response.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse carries per-field validation failures.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// PageData is the JSON shape of one collection page.
type PageData[T any] struct {
	Items       []T          `json:"items"`
	Tags        []domain.Tag `json:"tags"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	Total       int          `json:"total"`
}

// DetailData is the JSON shape of one entity with the tags of its collection.
type DetailData[T any] struct {
	Entity      *T           `json:"entity"`
	RelatedTags []domain.Tag `json:"relatedTags"`
}

// Success sends a 200 envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

// Created sends a 201 envelope.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

// Page sends one collection page with its facet tags.
func Page[T any](c *gin.Context, result domain.PageResult[T], tags []domain.Tag) {
	if tags == nil {
		tags = []domain.Tag{}
	}
	Success(c, PageData[T]{
		Items:       result.Items,
		Tags:        tags,
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
		Total:       result.Total,
	})
}

// Error maps err to a status via domain.HTTPStatusCode. Only AppError
// messages reach the client; anything else reads "internal error".
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.JSON(status, Response{Code: status, Message: msg})
}

// ValidationError sends a 400 with per-field details when err comes from the
// validator, or the bare error text otherwise.
func ValidationError(c *gin.Context, err error) {
	validationError(c, err, nil)
}

// BindAndValidate binds the request into obj. On failure it has already sent
// the 400 response and returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationError(c, err, obj)
		return false
	}
	return true
}

func validationError(c *gin.Context, err error, obj any) {
	fields := FieldErrors(err, obj)
	if fields == nil {
		c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

// FieldErrors flattens validator errors into field -> rule, for example
// "email" -> "email" or "name" -> "max=120". Field names follow the form or
// json tag of obj when present. It returns nil when err is not a validation
// error. HTML forms use it to flag inputs.
func FieldErrors(err error, obj any) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	names := tagNames(obj)
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := names[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[name] = rule
	}
	return out
}

// tagNames maps struct field names to their form tag, falling back to json.
func tagNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		for _, key := range []string{"form", "json"} {
			if name := tagName(f.Tag.Get(key)); name != "" {
				m[f.Name] = name
				break
			}
		}
	}
	return m
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
