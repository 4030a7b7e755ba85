package handle

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/do"
	"github.com/tobyward/chronoflux/internal/log"
	"github.com/tobyward/chronoflux/internal/store"
)

type ImageHandler struct {
	store store.Store
}

func NewImageHandler(i *do.Injector) (*ImageHandler, error) {
	return &ImageHandler{
		store: do.MustInvoke[store.Store](i),
	}, nil
}

func (h *ImageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	img, err := h.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, store.ErrExpired):
		http.Error(w, "image expired", http.StatusGone)
		return
	case err != nil:
		log.FromContextOrDiscard(r.Context()).Error("fetching stored image", log.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/"+img.Format)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img.Data)
}
