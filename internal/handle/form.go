package handle

import (
	"net/http"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/tobyward/chronoflux/internal/log"
	"github.com/tobyward/chronoflux/internal/page"
	"github.com/tobyward/chronoflux/internal/request"
)

type FormHandler struct {
	templator *page.Templator
}

func NewFormHandler(i *do.Injector) (*FormHandler, error) {
	return &FormHandler{
		templator: do.MustInvoke[*page.Templator](i),
	}, nil
}

func (h *FormHandler) Handle(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.templator, defaultPageParams())
}

func defaultPageParams() page.Params {
	return page.Params{
		NegativePrompt: request.DefaultNegativePrompt,
		Steps:          request.DefaultSteps,
		GuidanceScale:  request.DefaultGuidanceScale,
		Seed:           request.RandomSeed(),
		Samplers:       samplerOptions(request.DefaultSampler),
		Ratios:         ratioOptions(request.DefaultRatio),
	}
}

func samplerOptions(selected request.Sampler) []page.Option {
	return lo.Map(request.Samplers(), func(s request.Sampler, _ int) page.Option {
		return page.Option{Value: string(s), Label: string(s), Selected: s == selected}
	})
}

func ratioOptions(selected request.Ratio) []page.Option {
	return lo.Map(request.Ratios(), func(r request.Ratio, _ int) page.Option {
		return page.Option{Value: string(r), Label: r.Label(), Selected: r == selected}
	})
}

func renderPage(w http.ResponseWriter, r *http.Request, templator *page.Templator, params page.Params) {
	html, err := templator.Render(r.Context(), params)
	if err != nil {
		log.FromContextOrDiscard(r.Context()).Error("rendering page", log.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}
