package auth

import (
	"log/slog"
	"net/http"

	"taskline/contract"
	"taskline/errors"
)

// Session is the server-side record referenced by the connection's cookie.
// It stores the identity token issued at login by the excluded HTTP layer.
type Session struct {
	ID    string
	Token string
}

// ISessionStore reloads a session by id on every authenticated event, so a
// revoked session takes effect without waiting for a reconnect.
type ISessionStore interface {
	Load(sessionID string) (Session, error)
}

// SessionAuthenticator establishes identity out-of-band: the websocket
// handshake request carries a session cookie, and every inbound event
// re-verifies the token stored in that session.
//
// All failure stages (missing cookie, session reload, token verification,
// vanished user) collapse into the same unauthorized error so a client
// cannot probe which stage rejected it. The real cause goes to the log.
type SessionAuthenticator struct {
	sessions   ISessionStore
	directory  contract.IDirectory
	secret     []byte
	cookieName string
	log        *slog.Logger
}

func NewSessionAuthenticator(sessions ISessionStore, directory contract.IDirectory,
	secret []byte, cookieName string, log *slog.Logger) *SessionAuthenticator {
	return &SessionAuthenticator{
		sessions:   sessions,
		directory:  directory,
		secret:     secret,
		cookieName: cookieName,
		log:        log,
	}
}

// Authenticate resolves the user id behind the request's session.
// The returned error, if any, is always the uniform unauthorized variant.
func (a *SessionAuthenticator) Authenticate(r *http.Request) (string, error) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		a.log.Debug("authentication rejected: no session cookie")
		return "", errors.Unauthorized("")
	}

	session, err := a.sessions.Load(cookie.Value)
	if err != nil {
		a.log.Debug("authentication rejected: session reload failed", "error", err)
		return "", errors.Unauthorized("")
	}
	if session.Token == "" {
		a.log.Debug("authentication rejected: session carries no token")
		return "", errors.Unauthorized("")
	}

	claims, err := ValidateToken(session.Token, a.secret)
	if err != nil {
		a.log.Debug("authentication rejected: token verification failed", "error", err)
		return "", errors.Unauthorized("")
	}

	exists, err := a.directory.UserExists(claims.UserID)
	if err != nil {
		a.log.Error("user lookup failed during authentication", "error", err)
		return "", errors.Unauthorized("")
	}
	if !exists {
		a.log.Debug("authentication rejected: user no longer exists", "user_id", claims.UserID)
		return "", errors.Unauthorized("")
	}

	return claims.UserID, nil
}
