package controller

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// errorStatus maps a service error class to its HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorizedRegistration), errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrItemInUse),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorKey is the translation of an error class.
func errorKey(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "errors.validation"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "pages.login.invalidCredentials"
	case errors.Is(err, service.ErrUnauthorizedRegistration):
		return "pages.register.unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return "errors.forbidden"
	case errors.Is(err, service.ErrNotFound):
		return "errors.notFound"
	case errors.Is(err, service.ErrDuplicateUsername):
		return "pages.register.duplicate"
	case errors.Is(err, service.ErrItemInUse):
		return "pages.menu.inUse"
	case errors.Is(err, service.ErrInvalidTransition):
		return "pages.orders.invalidTransition"
	default:
		return "errors.store"
	}
}

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonObj sends a JSON response with an object and error status.
func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj answers 200 with obj on success. On failure the status comes
// from the error class and the message is translated; store errors do not
// leak their detail to the client.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: msg, Obj: obj})
		return
	}
	status := errorStatus(err)
	text := I18nWeb(c, errorKey(err))
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Method, c.FullPath(), "failed:", err)
	} else {
		logger.Debug(c.Request.Method, c.FullPath(), "rejected:", err)
		if status == http.StatusBadRequest || status == http.StatusConflict {
			text += " (" + err.Error() + ")"
		}
	}
	c.JSON(status, entity.Msg{Success: false, Msg: text})
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// paramId reads the :id path parameter.
func paramId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.Join(service.ErrValidation, errors.New("invalid id "+c.Param("id")))
	}
	return id, nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
