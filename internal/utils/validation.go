package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(requestFieldName)
	}
}

// requestFieldName reports fields under the name the client sent: the json
// key for bodies, the form key for query strings.
func requestFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// FieldErrors maps each failed field to a readable message.
func FieldErrors(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = fieldMessage(e)
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "dive":
		return "contains an invalid entry"
	}
	return fmt.Sprintf("failed the %q rule", e.Tag())
}

// BindAndValidate binds the request body to a struct and validates it.
// Payloads that fail validation are a 422 with per-field errors; bodies that
// cannot be decoded are a 422 with the decoder's message. It returns false
// once a response has been written.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if fields := FieldErrors(err); fields != nil {
			ValidationFailed(c, fields)
			return false
		}
		UnprocessableEntity(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// BindQuery is BindAndValidate for query strings.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		if fields := FieldErrors(err); fields != nil {
			ValidationFailed(c, fields)
			return false
		}
		UnprocessableEntity(c, "Invalid query parameters: "+err.Error())
		return false
	}
	return true
}
