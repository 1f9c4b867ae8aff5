package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wansing/blogr/core"
)

const uidKey = "uid"

var validate = validator.New()

type signInInput struct {
	Email    string `validate:"required,email,max=128"`
	Password string `validate:"required"`
	Name     string `validate:"max=128"`
}

// NewSessionManager configures a session manager. Its cookie settings are used for the evidence cookie.
//
// Resolve never commits a session, so the idle timeout is not extended by activity.
// If it is set, it caps the session lifetime, and signed tokens expire with it.
func NewSessionManager(store scs.Store, cookiePath string, lifetime, idleTimeout time.Duration, secure bool) *scs.SessionManager {
	var sm = scs.New()
	sm.Store = store
	sm.Cookie.Name = "session"
	sm.Cookie.Path = cookiePath + "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode // GET requests don't modify anything
	sm.Cookie.Secure = secure                 // false when running on localhost or behind a http proxy
	sm.IdleTimeout = idleTimeout
	sm.Lifetime = lifetime
	return sm
}

// Resolver turns session evidence into identities. It only reads sessions, SignIn and SignOut write them.
type Resolver struct {
	Sessions *scs.SessionManager
	Signer   *Signer
	Users    core.UserDB
	Log      logrus.FieldLogger
}

// SignedSession is the result of a successful sign-in.
type SignedSession struct {
	Token  string
	Expiry time.Time
	User   *core.User
}

// Evidence extracts the session evidence from the Authorization header or, if there is none, from the cookie.
func Evidence(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Resolve returns the identity of the caller, or core.Anonymous.
// Errors match core.ErrIdentityUnavailable.
func (res *Resolver) Resolve(r *http.Request) (core.Identity, error) {

	var evidence = Evidence(r, res.Sessions.Cookie.Name)
	if evidence == "" {
		return core.Anonymous, nil
	}

	claims, err := res.Signer.Verify(evidence)
	if err != nil {
		return core.Anonymous, nil // expired or forged
	}

	ctx, err := res.Sessions.Load(r.Context(), claims.ID)
	if err != nil {
		return core.Anonymous, core.IdentityFault("load session", err)
	}

	var uid = res.Sessions.GetString(ctx, uidKey)
	if uid == "" || uid != claims.Subject {
		return core.Anonymous, nil // revoked, or expired in the store
	}

	u, err := res.Users.GetUser(ctx, uid)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return core.Anonymous, nil
	case err != nil:
		return core.Anonymous, core.IdentityFault("get user", err)
	}

	return u.Identity(), nil
}

// SignIn verifies the password of a user. If no user with that email exists yet, it is created.
// Then a new session is stored.
func (res *Resolver) SignIn(ctx context.Context, email, password, name string) (*SignedSession, error) {

	var input = signInInput{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
		Name:     strings.TrimSpace(name),
	}
	if err := validate.Struct(input); err != nil {
		return nil, core.Invalid("email and password required")
	}

	u, err := res.Users.GetUserByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, core.ErrNotFound):
		u, err = res.register(ctx, input)
		if err == nil {
			break
		}
		// a concurrent first sign-in with the same email may have won the unique constraint
		var insertErr = err
		if u, err = res.Users.GetUserByEmail(ctx, input.Email); err != nil {
			return nil, core.StoreFault("insert user", insertErr)
		}
		if err := CheckPassword(u.PasswordHash, input.Password); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, core.StoreFault("get user", err)
	default:
		if err := CheckPassword(u.PasswordHash, input.Password); err != nil {
			return nil, err
		}
	}

	ctx, err = res.Sessions.Load(ctx, "") // fresh session, no fixation
	if err != nil {
		return nil, core.IdentityFault("new session", err)
	}
	res.Sessions.Put(ctx, uidKey, u.ID)

	token, expiry, err := res.Sessions.Commit(ctx)
	if err != nil {
		return nil, core.IdentityFault("commit session", err)
	}

	signed, err := res.Signer.Sign(token, u.ID, expiry)
	if err != nil {
		return nil, err
	}

	res.log().WithField("user", u.ID).Info("signed in")

	return &SignedSession{
		Token:  signed,
		Expiry: expiry,
		User:   u,
	}, nil
}

func (res *Resolver) register(ctx context.Context, input signInInput) (*core.User, error) {

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var u = &core.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := res.Users.InsertUser(ctx, u); err != nil {
		return nil, err
	}

	res.log().WithField("user", u.ID).Info("user created on first sign-in")
	return u, nil
}

// SignOut destroys the session which the evidence refers to. Missing or invalid evidence is ignored.
func (res *Resolver) SignOut(r *http.Request) error {

	claims, err := res.Signer.Verify(Evidence(r, res.Sessions.Cookie.Name))
	if err != nil {
		return nil
	}

	ctx, err := res.Sessions.Load(r.Context(), claims.ID)
	if err != nil {
		return core.IdentityFault("load session", err)
	}
	if err := res.Sessions.Destroy(ctx); err != nil {
		return core.IdentityFault("destroy session", err)
	}

	res.log().WithField("user", claims.Subject).Info("signed out")
	return nil
}

// SetCookie stores the signed token in the evidence cookie.
func (res *Resolver) SetCookie(w http.ResponseWriter, s *SignedSession) {
	var cookie = res.cookie(s.Token)
	if res.Sessions.Cookie.Persist {
		cookie.Expires = time.Unix(s.Expiry.Unix()+1, 0) // round up to the nearest second
		cookie.MaxAge = int(time.Until(s.Expiry).Seconds() + 1)
	}
	w.Header().Add("Set-Cookie", cookie.String())
	w.Header().Add("Cache-Control", `no-cache="Set-Cookie"`)
}

// ClearCookie expires the evidence cookie.
func (res *Resolver) ClearCookie(w http.ResponseWriter) {
	var cookie = res.cookie("")
	cookie.Expires = time.Unix(1, 0)
	cookie.MaxAge = -1
	w.Header().Add("Set-Cookie", cookie.String())
}

func (res *Resolver) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     res.Sessions.Cookie.Name,
		Value:    value,
		Path:     res.Sessions.Cookie.Path,
		Domain:   res.Sessions.Cookie.Domain,
		Secure:   res.Sessions.Cookie.Secure,
		HttpOnly: res.Sessions.Cookie.HttpOnly,
		SameSite: res.Sessions.Cookie.SameSite,
	}
}

func (res *Resolver) log() logrus.FieldLogger {
	if res.Log == nil {
		return logrus.StandardLogger()
	}
	return res.Log
}
