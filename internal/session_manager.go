package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

const (
	defaultSessionCookieName = "cms_session"
	defaultSessionMaxAge     = 86400 * 7
)

// SessionManager handles the session cookie and its backing store.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     int
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

func WithSessionPath(path string) SessionOption {
	return func(sm *SessionManager) {
		if path != "" {
			sm.path = path
		}
	}
}

func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// SetLogger is called by the App after its own options are applied.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// LoadSession reads the session named by the request cookie.
// Returns nil, nil when the request has no cookie.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return sm.store.Get(ctx, cookie.Value)
}

// CreateSession stores a fresh anonymous session for the request.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	sess := session.New(uuid.NewString(), token, time.Now().Add(time.Duration(sm.maxAge)*time.Second))
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	sess.ClearNew()
	sess.ClearDirty()
	sm.logger.DebugContext(ctx, "session created", slog.String("session_id", sess.ID))
	return sess, nil
}

// SaveSession writes the session cookie.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.Token,
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   sm.maxAge,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	})
}

// RotateToken issues a new cookie token so a token captured before login is useless after it.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return err
	}
	sess.Token = newToken
	sess.MarkDirty()

	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	return nil
}

// DeleteSession expires the session cookie.
func (sm *SessionManager) DeleteSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   -1,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	})
}

func (sm *SessionManager) Store() session.Store {
	return sm.store
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate session token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
