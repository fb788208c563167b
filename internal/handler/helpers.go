package handler

import (
	"errors"
	"net/http"
	"reflect"

	"klikpos/internal/apierror"
	"klikpos/internal/middleware"
	"klikpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as a float so min/gt/required tags apply.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// Returns false after writing the error response; the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes the status and envelope for a service error. Internal
// errors are logged with their cause and answered with a generic body.
func respondError(c *gin.Context, err error) {
	status := apierror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
	}
	c.JSON(status, apierror.FromError(err))
}

// actor returns the authenticated caller or writes 401.
func actor(c *gin.Context) (service.Actor, bool) {
	a, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return service.Actor{}, false
	}
	return a, true
}

// pathID parses the named path parameter as a UUID or writes 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
