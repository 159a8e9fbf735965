// Package joinus accepts job applications and forwards them to the content API.
package joinus

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ApplicationRequest is the join-us form. The CV travels as the "cv" file part.
type ApplicationRequest struct {
	Name           string `form:"name" binding:"required,max=120"`
	Email          string `form:"email" binding:"required,email,max=255"`
	Phone          string `form:"phone" binding:"required,syphone"`
	Field          string `form:"field" binding:"required,max=120"`
	AdditionalInfo string `form:"additional_info" binding:"required,max=5000"`
}

// phonePattern is a Syrian mobile number: 10 digits starting with 09.
var phonePattern = regexp.MustCompile(`^09\d{8}$`)

var registerOnce sync.Once

// RegisterValidations adds the "syphone" rule to gin's validator. It is safe
// to call more than once.
func RegisterValidations() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = v.RegisterValidation("syphone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
	})
	return err
}
