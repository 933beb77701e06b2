package http

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/validation"
)

// --- Response Types ---

// Response is the REST envelope. Successful responses carry Data and
// Message; failures add Error, which holds either a string or the
// per-field validation messages.
type Response struct {
	Data    any    `json:"Data,omitempty"`
	Message string `json:"Message,omitempty"`
	Error   any    `json:"Error,omitempty"`
}

// --- Error Response Helpers ---

// respondError sends an error envelope with the given status code.
func respondError(c *gin.Context, status int, detail any, message string) {
	c.JSON(status, Response{Error: detail, Message: message})
}

// respondBadRequest sends a 400 carrying field errors when err has them
// and the error text otherwise.
func respondBadRequest(c *gin.Context, err error, message string) {
	if fields, ok := validation.AsErrors(err); ok {
		respondError(c, http.StatusBadRequest, fields, message)
		return
	}
	respondError(c, http.StatusBadRequest, err.Error(), message)
}

// respondInternalError logs the error and sends a 500 with the error text.
func respondInternalError(c *gin.Context, err error, action string) {
	log.Printf("Internal error (%s): %v", action, err)
	respondError(c, http.StatusInternalServerError, err.Error(), somethingWentWrong(action))
}

// --- Success Response Helpers ---

func respondData(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{Data: data, Message: message})
}

func errorWhile(action string) string {
	return "Error while " + action
}

func somethingWentWrong(action string) string {
	return "Something went wrong while " + action
}

// --- Request Helpers ---

// requestScheme guesses the scheme the client used.
func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	return "http"
}

// pageURL returns the absolute URL of page n of the current listing.
// The first page drops the page parameter.
func pageURL(r *http.Request, n int) *string {
	u := url.URL{
		Scheme: requestScheme(r),
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	q := r.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// isClientInputError reports whether err came from decoding the body
// rather than from the store.
func isClientInputError(err error) bool {
	_, ok := validation.AsErrors(err)
	return ok || errors.Is(err, errMalformedBody)
}
