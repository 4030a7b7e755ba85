package handle

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/tobyward/chronoflux/internal/flux"
	"github.com/tobyward/chronoflux/internal/log"
	"github.com/tobyward/chronoflux/internal/page"
	"github.com/tobyward/chronoflux/internal/request"
	"github.com/tobyward/chronoflux/internal/store"
)

type GenerateHandler struct {
	generator flux.Generator
	store     store.Store
	templator *page.Templator
	key       string
}

func NewGenerateHandler(i *do.Injector) (*GenerateHandler, error) {
	return &GenerateHandler{
		generator: do.MustInvoke[flux.Generator](i),
		store:     do.MustInvoke[store.Store](i),
		templator: do.MustInvoke[*page.Templator](i),
		key:       do.MustInvokeNamed[string](i, "flux_api_key"),
	}, nil
}

// Handle runs the whole flow synchronously: collect, submit, poll, fetch,
// render. The page blocks until a terminal outcome; only one generation runs
// per request.
func (h *GenerateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContextOrDiscard(ctx).WithGroup("GenerateHandler")

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := request.Collect(r.PostForm)
	if err != nil {
		logger.Info("rejecting form input", log.Err(err))
		pp := echoPageParams(r.PostForm)
		pp.Error = err.Error()
		renderPage(w, r, h.templator, pp)
		return
	}

	key := lo.Ternary(r.PostForm.Get("api_key") != "", r.PostForm.Get("api_key"), h.key)
	pp := paramsToPage(params)
	if key == "" {
		pp.Error = "no API key configured; set FLUX_API_KEY or supply one in the form"
		renderPage(w, r, h.templator, pp)
		return
	}

	started := time.Now()
	result, err := h.generator.Generate(ctx, key, params)
	if err != nil {
		logger.Error("generation failed", log.Err(err))
		pp.Error = err.Error()
		renderPage(w, r, h.templator, pp)
		return
	}

	id := h.store.Put(ctx, store.Image{Data: result.Data, Format: result.Format})
	pp.ImageURL = "/images/" + id
	pp.Elapsed = time.Since(started).Round(100 * time.Millisecond).String()
	renderPage(w, r, h.templator, pp)
}

func paramsToPage(params request.Params) page.Params {
	return page.Params{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Steps:          params.Steps,
		GuidanceScale:  params.GuidanceScale,
		Seed:           params.Seed,
		Samplers:       samplerOptions(params.Sampler),
		Ratios:         ratioOptions(ratioForSize(params.Width, params.Height)),
	}
}

// echoPageParams rebuilds the page from raw form values after a validation
// failure so the user keeps what they typed.
func echoPageParams(values url.Values) page.Params {
	pp := defaultPageParams()
	pp.Prompt = values.Get("prompt")
	if values.Has("negative_prompt") {
		pp.NegativePrompt = values.Get("negative_prompt")
	}
	if steps, err := strconv.Atoi(values.Get("steps")); err == nil {
		pp.Steps = steps
	}
	if scale, err := strconv.ParseFloat(values.Get("guidance_scale"), 64); err == nil {
		pp.GuidanceScale = scale
	}
	if seed, err := strconv.ParseUint(values.Get("seed"), 10, 32); err == nil {
		pp.Seed = uint32(seed)
	}
	if sampler, err := request.ParseSampler(values.Get("sampler")); err == nil {
		pp.Samplers = samplerOptions(sampler)
	}
	if ratio, err := request.ParseRatio(values.Get("aspect_ratio")); err == nil {
		pp.Ratios = ratioOptions(ratio)
	}
	return pp
}

func ratioForSize(width, height int) request.Ratio {
	for _, r := range request.Ratios() {
		w, h := r.Size()
		if w == width && h == height {
			return r
		}
	}
	return request.DefaultRatio
}
