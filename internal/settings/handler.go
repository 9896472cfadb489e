package settings

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lightgray/lightgray/internal/httputil"
	"github.com/lightgray/lightgray/internal/validate"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type updateRequest struct {
	HeadTitle       string `json:"headTitle"`
	MetaDescription string `json:"metaDescription"`
	MetaKeywords    string `json:"metaKeywords"`
	MetaAuthor      string `json:"metaAuthor"`
	WebTitle        string `json:"webTitle"`
	WebSubtitle     string `json:"webSubtitle"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.Context())
	if err != nil {
		slog.Error("settings: get", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := Settings{
		HeadTitle:       strings.TrimSpace(req.HeadTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		MetaKeywords:    strings.TrimSpace(req.MetaKeywords),
		MetaAuthor:      strings.TrimSpace(req.MetaAuthor),
		WebTitle:        strings.TrimSpace(req.WebTitle),
		WebSubtitle:     strings.TrimSpace(req.WebSubtitle),
	}

	if msg := validate.First(
		validate.HeadTitle(in.HeadTitle),
		validate.MetaDescription(in.MetaDescription),
		validate.MetaKeywords(in.MetaKeywords),
		validate.MetaAuthor(in.MetaAuthor),
		validate.WebTitle(in.WebTitle),
		validate.WebSubtitle(in.WebSubtitle),
	); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	out, err := h.store.Update(r.Context(), in)
	if err != nil {
		slog.Error("settings: update", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	slog.Info("settings: updated", "head_title", out.HeadTitle)
	httputil.WriteJSON(w, http.StatusOK, out)
}
