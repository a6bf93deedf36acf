package errordata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxEchoBytes caps how much of a client payload is echoed back in errors.
const MaxEchoBytes = 2048

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindNotFound
	KindBadRequest
	KindUpstream
)

func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is what services hand back to handlers. Message is safe to show to the
// caller; Details are extra JSON fields merged into the response body.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

func (e *Error) WithDetail(key string, val interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = val
	return e
}

func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Upstream(msg string, err error) *Error {
	e := &Error{Kind: KindUpstream, Message: msg, Err: err}
	if err != nil {
		e.WithDetail("details", err.Error())
	}
	return e
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, KindInternal
// otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Body builds the JSON error body for err.
func Body(err error) (int, gin.H) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
	body := gin.H{"error": e.Message}
	for k, v := range e.Details {
		if k == "error" {
			continue
		}
		body[k] = v
	}
	return e.StatusCode(), body
}

// Respond aborts the gin request with err rendered as JSON.
func Respond(c *gin.Context, err error) {
	status, body := Body(err)
	c.AbortWithStatusJSON(status, body)
}

// Echo renders v for diagnostics, truncated to MaxEchoBytes.
func Echo(v interface{}) string {
	var raw []byte
	switch t := v.(type) {
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%T", v)
		}
		raw = b
	}
	if len(raw) <= MaxEchoBytes {
		return string(raw)
	}
	return string(raw[:MaxEchoBytes]) + "...(truncated)"
}
