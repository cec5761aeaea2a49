package apierr

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope is the §7 uniform error body: {success:false, message, error_code, ...context}.
type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    Kind                   `json:"error_code"`
	Fields  map[string][]string    `json:"fields,omitempty"`
	Context map[string]interface{} `json:"-"`
}

func (e envelope) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"success":    e.Success,
		"message":    e.Message,
		"error_code": e.Code,
	}
	if len(e.Fields) > 0 {
		out["fields"] = e.Fields
	}
	for k, v := range e.Context {
		out[k] = v
	}
	return json.Marshal(out)
}

// Respond writes err to the response as the §7 uniform error envelope,
// translating it into an *Error first if it isn't one already. Adapted
// from the teacher's utils/error.go JSONError helper, generalized from a
// plain message/details pair into the full kind+fields+context envelope §7
// specifies.
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	e, ok := As(err)
	if !ok {
		logger.Error("unhandled internal error", zap.Error(err))
		e = Internal(err)
	}
	if e.Kind == KindInternal {
		logger.Error(e.Message, zap.Error(err))
	}
	c.JSON(e.Kind.HTTPStatus(), envelope{Success: false, Message: e.Message, Code: e.Kind, Fields: e.Fields, Context: e.Context})
}

// RecoveryMiddleware catches panics and renders them as a §7 Internal
// error instead of crashing the process, mirroring the teacher's
// ErrorHandler middleware.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("unhandled panic", zap.Any("recover", r))
				c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: "an unexpected error occurred", Code: KindInternal})
				c.Abort()
			}
		}()
		c.Next()
	}
}
