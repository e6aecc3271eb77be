package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

// AdminHandler renders generic CRUD screens for every admin resource. All
// routes are mounted behind auth.RequireLogin.
type AdminHandler struct {
	admin  *service.AdminService
	render *Renderer
	logger *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, render *Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, render: render, logger: logger}
}

type adminList struct {
	Resource service.Resource
	Rows     []service.Row
}

type formField struct {
	service.Field
	Value   string
	Options []service.Option
}

type adminForm struct {
	Resource service.Resource
	ID       int64
	Fields   []formField
	Error    string
}

func listPath(res service.Resource) string {
	return AdminPath + res.Name() + "/"
}

// HTTP: GET /admin/
func (h *AdminHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "admin_index", "Admin", h.admin.Resources())
}

func (h *AdminHandler) resource(w http.ResponseWriter, r *http.Request) (service.Resource, bool) {
	res, err := h.admin.Resource(chi.URLParam(r, "resource"))
	if err != nil {
		h.render.Error(w, r, err)
		return nil, false
	}
	return res, true
}

// HTTP: GET /admin/{resource}/
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	rows, err := res.List(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "admin_list", res.Title(), adminList{Resource: res, Rows: rows})
}

// HTTP: GET /admin/{resource}/new
func (h *AdminHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, res, 0, service.Values{}, "")
}

// HTTP: GET /admin/{resource}/{id}/edit
func (h *AdminHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", res.Name())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	values, err := res.Get(r.Context(), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, res, id, values, "")
}

// HandleCreate and HandleUpdate share save.
//
// HTTP: POST /admin/{resource}/new
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	h.save(w, r, res, 0)
}

// HTTP: POST /admin/{resource}/{id}/edit
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", res.Name())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.save(w, r, res, id)
}

// save stores the posted form. Input errors re-render the form with the
// submitted values; the password field is never echoed back.
func (h *AdminHandler) save(w http.ResponseWriter, r *http.Request, res service.Resource, id int64) {
	if err := r.ParseForm(); err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("form", "malformed form body"))
		return
	}
	values := service.Values{}
	for _, f := range res.Fields() {
		values[f.Name] = r.PostForm.Get(f.Name)
	}

	_, err := h.admin.Save(r.Context(), res, id, values)
	if err != nil {
		status, _, message := classify(err)
		if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
			delete(values, "password")
			h.renderForm(w, r, status, res, id, values, message)
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.flash(r, fmt.Sprintf("%s record saved", res.Title()))
	http.Redirect(w, r, listPath(res), http.StatusSeeOther)
}

// HTTP: POST /admin/{resource}/{id}/delete
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", res.Name())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	if err := h.admin.Delete(r.Context(), res, id); err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.flash(r, fmt.Sprintf("%s record deleted", res.Title()))
	http.Redirect(w, r, listPath(res), http.StatusSeeOther)
}

func (h *AdminHandler) renderForm(
	w http.ResponseWriter, r *http.Request, status int,
	res service.Resource, id int64, values service.Values, formErr string,
) {
	form := adminForm{Resource: res, ID: id, Error: formErr}
	for _, f := range res.Fields() {
		ff := formField{Field: f, Value: values[f.Name]}
		if f.Kind == service.FieldGame {
			opts, err := h.admin.GameOptions(r.Context())
			if err != nil {
				h.render.Error(w, r, err)
				return
			}
			ff.Options = opts
		}
		form.Fields = append(form.Fields, ff)
	}

	title := "New " + res.Title()
	if id != 0 {
		title = "Edit " + res.Title()
	}
	h.render.Render(w, r, status, "admin_form", title, form)
}

func (h *AdminHandler) flash(r *http.Request, msg string) {
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.AddFlash(msg)
	}
}
