package fakebackend

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const tokenKey = "token"

func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.requests.Add(1)
		c.Next()
	}
}

// requestID echoes X-Request-ID, generating one when the client sent none
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

func (s *Server) throttled() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		limited := s.throttle > 0
		retryAfter := s.retryAfter
		if limited {
			s.throttle--
		}
		s.mu.Unlock()

		if limited {
			if retryAfter != "" {
				c.Header("Retry-After", retryAfter)
			}
			fail(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			fail(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		c.Set(tokenKey, token)
		c.Next()
	}
}
