package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tracker/internal/models"
	"tracker/internal/validate"
)

var dateType = reflect.TypeOf(models.Date{})

var registerOnce sync.Once

// registerValidators teaches gin's validator the API's custom rules and
// makes it report fields by their JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return validate.Username(fl.Field().String()) == nil
		})
	})
}

// bindJSON decodes the request body into dst. On failure it writes the
// 400 response and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": translate(verrs)})
	case errors.As(err, &typeErr) && typeErr.Field != "":
		fields := validate.FieldErrors{}
		if typeErr.Type == dateType {
			fields.Addf(typeErr.Field, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		} else {
			fields.Addf(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty"})
	case errors.As(err, &syntaxErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON: " + syntaxErr.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
	return false
}

// translate turns validator errors into the API's field error shape.
func translate(verrs validator.ValidationErrors) validate.FieldErrors {
	fields := validate.FieldErrors{}
	for _, fe := range verrs {
		name := fe.Field()
		switch fe.Tag() {
		case "required":
			fields.Addf(name, "This field is required.")
		case "max":
			fields.Addf(name, fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param()))
		case "username":
			fields.Add(name, validate.ErrBadUsername)
		default:
			fields.Addf(name, fmt.Sprintf("Failed on the %q rule.", fe.Tag()))
		}
	}
	return fields
}
