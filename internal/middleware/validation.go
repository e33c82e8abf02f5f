package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/pkg/validation"
)

// ContextValidatedBody holds the decoded request set by ValidateRequest
const ContextValidatedBody = "validatedBody"

var validate = validation.New()

// ValidateRequest decodes the JSON body into a fresh T and validates it.
// Handlers read the result with ValidatedBody.
func ValidateRequest[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := new(T)
		if err := c.ShouldBindJSON(body); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
			errorDetail = errorDetail.WithDetails(err.Error())
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}

		if err := validate.Struct(body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}

		c.Set(ContextValidatedBody, body)
		c.Next()
	}
}

// ValidatedBody returns the body stored by ValidateRequest[T]
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	v, exists := c.Get(ContextValidatedBody)
	if !exists {
		return nil, false
	}
	body, ok := v.(*T)
	return body, ok
}
