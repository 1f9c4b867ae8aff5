package api

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decode(w, req, &input); err != nil {
		return err
	}

	s, err := ctx.srv.Resolver.SignIn(req.Context(), input.Email, input.Password, input.Name)
	if err != nil {
		return err
	}

	ctx.srv.Resolver.SetCookie(w, s)
	ctx.respond(w, http.StatusOK, struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      userJSON  `json:"user"`
	}{
		Token:     s.Token,
		ExpiresAt: s.Expiry,
		User: userJSON{
			ID:    s.User.ID,
			Email: s.User.Email,
			Name:  s.User.Name,
		},
	})
	return nil
}

func logout(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	if err := ctx.srv.Resolver.SignOut(req); err != nil {
		return err
	}
	ctx.srv.Resolver.ClearCookie(w)
	ctx.respond(w, http.StatusOK, map[string]string{"message": "signed out"})
	return nil
}

func me(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	ctx.respond(w, http.StatusOK, userJSON{
		ID:    ctx.Identity.UserID,
		Email: ctx.Identity.Email,
		Name:  ctx.Identity.Name,
	})
	return nil
}
