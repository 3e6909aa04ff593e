package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
	"github.com/p-n-ai/curricuforge/internal/workspace"
)

type contextKey string

const identityKey contextKey = "identity"

// Claims is the payload of a session token.
type Claims struct {
	Email string          `json:"email"`
	Role  curriculum.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and checks HS256 session tokens. Sign-in itself is a stub:
// a token only proves which identity the user declared.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for id.
func (t *Tokens) Issue(id curriculum.Identity) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its identity.
func (t *Tokens) Parse(token string) (curriculum.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return curriculum.Identity{}, err
	}
	return curriculum.Identity{Email: claims.Email, Role: claims.Role}, nil
}

// requireSession admits requests carrying a valid token for the identity the
// workspace is signed in as. The token comes from the Authorization header or
// the session cookie.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			if c, err := r.Cookie(h.cookieName); err == nil {
				token = c.Value
			}
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}

		claimed, err := h.tokens.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session token")
			return
		}
		current, ok := h.engine.Identity()
		if !ok || current.Email != claimed.Email {
			writeError(w, http.StatusUnauthorized, workspace.ErrNotAuthenticated.Error())
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) curriculum.Identity {
	id, _ := ctx.Value(identityKey).(curriculum.Identity)
	return id
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type loginRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required"`
	Role     curriculum.Role `json:"role" validate:"required,oneof=student teacher"`
}

type signupRequest struct {
	Email           string          `json:"email" validate:"required,email"`
	Password        string          `json:"password" validate:"required,min=6"`
	ConfirmPassword string          `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            curriculum.Role `json:"role" validate:"required,oneof=student teacher"`
}

type sessionResponse struct {
	Identity  curriculum.Identity       `json:"identity"`
	Token     string                    `json:"token,omitempty"`
	ExpiresAt *time.Time                `json:"expiresAt,omitempty"`
	Requests  []workspace.RequestStatus `json:"requests"`
}

// Login handles POST /api/auth/login. Any password is accepted.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.signIn(w, r, req.Email, req.Role)
}

// Signup handles POST /api/auth/signup. Nothing is stored beyond the session
// identity; the passwords only have to match.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.signIn(w, r, req.Email, req.Role)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, email string, role curriculum.Role) {
	id, err := h.engine.Login(r.Context(), email, role)
	if err != nil {
		writeFailure(w, err)
		return
	}
	token, expires, err := h.tokens.Issue(id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sessionResponse{
		Identity:  id,
		Token:     token,
		ExpiresAt: &expires,
		Requests:  h.engine.Requests(),
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.engine.Logout(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{
		Identity: identityFrom(r.Context()),
		Requests: h.engine.Requests(),
	})
}

// Dismiss handles POST /api/notices/{kind}/dismiss.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	kind := workspace.RequestKind(pathVar(r, "kind"))
	if err := h.engine.Dismiss(kind); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
