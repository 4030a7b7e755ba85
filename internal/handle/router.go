package handle

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/do"
)

type Router struct {
	router *mux.Router
}

func NewRouter(i *do.Injector) (*Router, error) {
	form := do.MustInvoke[*FormHandler](i)
	generate := do.MustInvoke[*GenerateHandler](i)
	image := do.MustInvoke[*ImageHandler](i)

	r := mux.NewRouter()
	r.HandleFunc("/", form.Handle).Methods(http.MethodGet)
	r.HandleFunc("/generate", generate.Handle).Methods(http.MethodPost)
	r.HandleFunc("/images/{id}", image.Handle).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return &Router{router: r}, nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
