package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wansing/blogr/auth"
	"github.com/wansing/blogr/core"
	"github.com/wansing/blogr/render"
)

const excerptLength = 200

var errMalformed = errors.New("malformed JSON body")

func status(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated), errors.Is(err, auth.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, errMalformed):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrIdentityUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error. Faults are logged, and their details are not exposed.
func (ctx *context) fail(w http.ResponseWriter, err error) {
	var code = status(err)
	var msg = err.Error()
	switch code {
	case http.StatusServiceUnavailable:
		msg = "identity service unavailable"
	case http.StatusInternalServerError:
		msg = "internal error"
	}
	if code >= 500 {
		ctx.Log.WithError(err).Error("request failed")
	}
	respondError(ctx.Log, w, code, msg)
}

func (ctx *context) respond(w http.ResponseWriter, code int, v interface{}) {
	respond(ctx.Log, w, code, v)
}

func respondError(log logrus.FieldLogger, w http.ResponseWriter, code int, msg string) {
	respond(log, w, code, map[string]string{"error": msg})
}

func respond(log logrus.FieldLogger, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("encoding response")
	}
}

func decode(w http.ResponseWriter, req *http.Request, v interface{}) error {
	req.Body = http.MaxBytesReader(w, req.Body, 1<<20)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return errMalformed
	}
	return nil
}

type authorJSON struct {
	Name string `json:"name"`
}

type postJSON struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	HTML      string     `json:"html"`
	Excerpt   string     `json:"excerpt"`
	Published bool       `json:"published"`
	AuthorID  string     `json:"author_id"`
	Author    authorJSON `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newPostJSON(p *core.Post) postJSON {
	return postJSON{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		HTML:      render.HTML(p.Body),
		Excerpt:   render.Excerpt(p.Body, excerptLength),
		Published: p.Published,
		AuthorID:  p.OwnerID,
		Author:    authorJSON{Name: p.AuthorName},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func newPostsJSON(posts []*core.Post) []postJSON {
	var result = make([]postJSON, 0, len(posts))
	for _, p := range posts {
		result = append(result, newPostJSON(p))
	}
	return result
}
