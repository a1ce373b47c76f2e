// Package handlers contains the gin handlers of the HTTP API.
package handlers

import (
	stderrors "errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

var registerOnce sync.Once

// RegisterValidatorTagNames makes gin's binding validator report JSON (or
// form) field names, matching the names used by domain validation.
func RegisterValidatorTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// bindError converts a binding failure into a ValidationError.
func bindError(err error) error {
	var ves validator.ValidationErrors
	if stderrors.As(err, &ves) {
		return utils.ToValidationError(ves)
	}
	if stderrors.Is(err, io.EOF) {
		return errors.Invalid("body", "is required")
	}
	return errors.Invalid("body", err.Error())
}

func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return nil
}
