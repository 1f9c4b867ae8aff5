// Package api serves the post lifecycle as a JSON resource API.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/wansing/blogr/auth"
	"github.com/wansing/blogr/core"
)

// Server holds the dependencies of the handlers.
type Server struct {
	Lifecycle   *core.Lifecycle
	Resolver    *auth.Resolver
	Log         logrus.FieldLogger
	CORSOrigins []string // no CORS headers if empty
}

// context is created for each request. It is passed to the handlers along with the resolved identity.
type context struct {
	srv      *Server
	Identity core.Identity
	Log      logrus.FieldLogger
}

// identityMode tells the middleware whether to resolve the caller.
type identityMode int

const (
	identityNone     identityMode = iota // ctx.Identity stays anonymous, the session store is not asked
	identityOptional                     // anonymous callers are served
	identityRequired                     // anonymous callers get 401
)

func middleware(srv *Server, mode identityMode, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			srv:      srv,
			Identity: core.Anonymous,
			Log:      srv.log().WithField("request", w.Header().Get(requestIDHeader)),
		}

		if mode != identityNone {
			id, err := srv.Resolver.Resolve(req)
			if err != nil {
				ctx.fail(w, err)
				return
			}
			ctx.Identity = id
		}

		if mode == identityRequired && ctx.Identity.IsAnonymous() {
			ctx.fail(w, core.ErrUnauthenticated)
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			ctx.fail(w, err)
		}
	}
}

// NewHandler returns the router, wrapped in request id, logging and CORS handlers.
func NewHandler(srv *Server) http.Handler {

	var log = srv.log()

	var router = httprouter.New()
	router.HandleMethodNotAllowed = true            // sets the Allow header
	router.HandleOPTIONS = len(srv.CORSOrigins) > 0 // else OPTIONS is a method like any other
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(log, w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(log, w, http.StatusNotFound, "not found")
	})
	router.PanicHandler = func(w http.ResponseWriter, req *http.Request, recovered interface{}) {
		srv.log().WithFields(logrus.Fields{
			"request": w.Header().Get(requestIDHeader),
			"panic":   fmt.Sprint(recovered),
		}).Error("recovered from panic")
		respondError(log, w, http.StatusInternalServerError, "internal error")
	}

	// posts
	router.GET("/posts", middleware(srv, identityNone, listPublished))
	router.POST("/posts", middleware(srv, identityRequired, createPost))
	router.GET("/posts/:id", middleware(srv, identityOptional, getPost)) // drafts are visible to their owner
	router.PUT("/posts/:id", middleware(srv, identityRequired, publishPost))
	router.DELETE("/posts/:id", middleware(srv, identityRequired, deletePost))
	router.GET("/drafts", middleware(srv, identityRequired, listDrafts))

	// session
	router.POST("/login", middleware(srv, identityNone, login))
	router.POST("/logout", middleware(srv, identityNone, logout)) // SignOut reads the evidence itself
	router.GET("/me", middleware(srv, identityRequired, me))

	var handler http.Handler = router
	if len(srv.CORSOrigins) > 0 {
		handler = cors.Handler(cors.Options{
			AllowedOrigins:   srv.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		})(handler)
	}
	return withRequestID(logRequests(log, handler))
}

func (srv *Server) log() logrus.FieldLogger {
	if srv.Log == nil {
		return logrus.StandardLogger()
	}
	return srv.Log
}
