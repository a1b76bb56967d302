package app

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"desideri-go/internal/domain"
)

const sessionCookieName = "desideri_session"

var ErrBadCredentials = errors.New("invalid role or password")

type sessionPayload struct {
	Role  domain.Role `json:"role"`
	Exp   int64       `json:"exp"`
	Nonce string      `json:"nonce"`
}

// Session is the authenticated role of a request.
type Session struct {
	Role      domain.Role `json:"ruolo"`
	ExpiresAt time.Time   `json:"scadenza"`
}

func HashPassword(pw string) (string, error) {
	pw = strings.TrimSpace(pw)
	if len(pw) < 8 {
		return "", errors.New("password too short")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash string, pw string) bool {
	if hash == "" || pw == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Authenticate checks a role's shared password.
func (a *App) Authenticate(ctx context.Context, role domain.Role, pw string) error {
	if !role.Valid() {
		return ErrBadCredentials
	}
	hash, err := a.store.Q.GetRoleCredential(ctx, role)
	if err != nil {
		return err
	}
	if !CheckPassword(hash, strings.TrimSpace(pw)) {
		return ErrBadCredentials
	}
	return nil
}

// SetSessionRole sets a signed cookie carrying the role.
func (a *App) SetSessionRole(w http.ResponseWriter, role domain.Role) (Session, error) {
	exp := time.Now().Add(a.cfg.SessionTTL)
	pl := sessionPayload{
		Role:  role,
		Exp:   exp.Unix(),
		Nonce: uuid.NewString(),
	}
	val, err := a.signJSON(pl)
	if err != nil {
		return Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.secureCookies(),
		Expires:  time.Unix(pl.Exp, 0),
	})
	return Session{Role: role, ExpiresAt: time.Unix(pl.Exp, 0)}, nil
}

func (a *App) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.secureCookies(),
	})
}

func (a *App) secureCookies() bool {
	return strings.HasPrefix(strings.ToLower(a.cfg.BaseURL), "https://")
}

func (a *App) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	var pl sessionPayload
	if err := a.verifyJSON(c.Value, &pl); err != nil {
		return Session{}, false
	}
	if !pl.Role.Valid() || pl.Exp <= 0 || time.Now().Unix() > pl.Exp {
		return Session{}, false
	}
	return Session{Role: pl.Role, ExpiresAt: time.Unix(pl.Exp, 0)}, true
}

/* ---------- signed cookie helpers ---------- */

func (a *App) signJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + a.sign(payload), nil
}

func (a *App) verifyJSON(s string, out any) error {
	payload, sig, ok := strings.Cut(s, ".")
	if !ok {
		return errors.New("bad format")
	}
	if !a.verify(payload, sig) {
		return errors.New("bad signature")
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (a *App) sign(payload string) string {
	m := hmac.New(sha256.New, a.cfg.SessionHashKey)
	_, _ = m.Write([]byte(payload))
	return hex.EncodeToString(m.Sum(nil))
}

func (a *App) verify(payload, sigHex string) bool {
	got, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	m := hmac.New(sha256.New, a.cfg.SessionHashKey)
	_, _ = m.Write([]byte(payload))
	return hmac.Equal(got, m.Sum(nil))
}
