package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ETag buffers successful GET responses, tags them with a weak ETag and
// answers a matching If-None-Match with 304. It suits routes whose payload
// rarely changes, such as the catalog.
func ETag(maxAge int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}

			res := c.Response()
			orig := res.Writer
			buf := &bufferedWriter{ResponseWriter: orig, status: http.StatusOK}
			res.Writer = buf
			err := next(c)
			res.Writer = orig
			if err != nil {
				return err
			}

			if buf.status < 400 {
				tag := fmt.Sprintf(`W/"%x"`, sha256.Sum256(buf.body.Bytes()))
				orig.Header().Set("ETag", tag)
				orig.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
				if etagMatch(req.Header.Get("If-None-Match"), tag) {
					orig.WriteHeader(http.StatusNotModified)
					return nil
				}
			}
			orig.WriteHeader(buf.status)
			_, err = orig.Write(buf.body.Bytes())
			return err
		}
	}
}

type bufferedWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(code int) { w.status = code }

func (w *bufferedWriter) Write(b []byte) (int, error) { return w.body.Write(b) }

func etagMatch(header, tag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == strings.TrimPrefix(tag, "W/") {
			return true
		}
	}
	return false
}
