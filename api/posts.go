package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func listPublished(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	posts, err := ctx.srv.Lifecycle.ListPublished(req.Context())
	if err != nil {
		return err
	}
	ctx.respond(w, http.StatusOK, newPostsJSON(posts))
	return nil
}

func listDrafts(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	posts, err := ctx.srv.Lifecycle.ListOwnDrafts(req.Context(), ctx.Identity)
	if err != nil {
		return err
	}
	ctx.respond(w, http.StatusOK, newPostsJSON(posts))
	return nil
}

func getPost(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	post, err := ctx.srv.Lifecycle.GetVisible(req.Context(), ctx.Identity, params.ByName("id"))
	if err != nil {
		return err
	}
	ctx.respond(w, http.StatusOK, newPostJSON(post))
	return nil
}

func createPost(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var input struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		Content string `json:"content"` // alias of body
	}
	if err := decode(w, req, &input); err != nil {
		return err
	}
	if input.Body == "" {
		input.Body = input.Content
	}

	post, err := ctx.srv.Lifecycle.Create(req.Context(), ctx.Identity, input.Title, input.Body)
	if err != nil {
		return err
	}
	ctx.respond(w, http.StatusCreated, newPostJSON(post))
	return nil
}

func publishPost(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	post, err := ctx.srv.Lifecycle.Publish(req.Context(), ctx.Identity, params.ByName("id"))
	if err != nil {
		return err
	}
	ctx.respond(w, http.StatusOK, newPostJSON(post))
	return nil
}

func deletePost(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if err := ctx.srv.Lifecycle.Delete(req.Context(), ctx.Identity, params.ByName("id")); err != nil {
		return err
	}
	ctx.respond(w, http.StatusOK, map[string]string{"message": "post deleted"})
	return nil
}
