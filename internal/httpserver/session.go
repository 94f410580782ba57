package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ctxSessionKey is the context key type for the player session id.
type ctxSessionKey struct{}

// withSession attaches a player session id to the request.
// The id travels in a signed JWT (cookie or bearer token); requests without
// a valid token get a fresh id and a new cookie. It never rejects a request.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.parseSession(bearerOrCookie(r, s.cfg.CookieName))
		if err != nil {
			sid = uuid.NewString()
			if err := s.setSessionCookie(w, sid); err != nil {
				log.Error().Err(err).Msg("sign session")
				http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the id placed in ctx by withSession.
func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxSessionKey{}).(string)
	return sid
}

// signSession creates an HS256 JWT carrying the session id.
// Expiry is checked against the server clock in parseSession.
func (s *Server) signSession(sid string) (string, error) {
	now := s.cfg.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": now.Add(s.cfg.SessionTTL).Unix(),
		"iat": now.Unix(),
	})
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

// parseSession verifies a session token and returns its id.
func (s *Server) parseSession(token string) (string, error) {
	if token == "" {
		return "", errors.New("no session token")
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.cfg.Now))
	if err != nil || !t.Valid {
		return "", errors.New("invalid session token")
	}
	sid, _ := claims["sid"].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return "", errors.New("invalid session id")
	}
	return sid, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
// The cookie lifetime is relative (Max-Age) so it never depends on the
// server clock agreeing with the client's.
func (s *Server) setSessionCookie(w http.ResponseWriter, sid string) error {
	tok, err := s.signSession(sid)
	if err != nil {
		return err
	}
	sameSite := http.SameSiteLaxMode
	if s.cfg.Secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: sameSite,
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
	})
	return nil
}

// bearerOrCookie extracts a bearer token from Authorization header or the session cookie.
func bearerOrCookie(r *http.Request, cookie string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}
