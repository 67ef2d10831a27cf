package snaptrade

import (
	"net/http"
	"strconv"
	"strings"
)

// Meta describes the HTTP outcome of a call.
type Meta struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}

// Response is the result of a successful call.
type Response[T any] struct {
	Data T    `json:"data"`
	Meta Meta `json:"meta"`
}

func metaFrom(resp *http.Response) Meta {
	return Meta{Status: resp.StatusCode, StatusText: reasonPhrase(resp)}
}

// reasonPhrase strips the numeric code from resp.Status ("200 OK" -> "OK").
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
