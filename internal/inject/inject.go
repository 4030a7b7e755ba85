package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/samber/do"
	"github.com/tobyward/chronoflux/internal/config"
	"github.com/tobyward/chronoflux/internal/flux"
	"github.com/tobyward/chronoflux/internal/handle"
	"github.com/tobyward/chronoflux/internal/log"
	"github.com/tobyward/chronoflux/internal/page"
	"github.com/tobyward/chronoflux/internal/param"
	"github.com/tobyward/chronoflux/internal/store"
)

func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Info(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, cfg)
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.RequestTimeout})

	// AWS clients are only invoked when the key lives in Parameter Store.
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})

	do.Provide[param.Fetcher](injector, func(i *do.Injector) (param.Fetcher, error) {
		if cfg.FluxAPIKeyParam != "" {
			return param.NewParameterStoreFetcher(i)
		}
		return &param.StaticFetcher{Value: cfg.FluxAPIKey}, nil
	})
	do.ProvideNamed[string](injector, "flux_api_key", func(i *do.Injector) (string, error) {
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, cfg.FluxAPIKeyParam)
	})

	do.Provide[flux.Generator](injector, flux.NewClient)
	do.Provide[store.Store](injector, store.NewMemoryStore)
	do.Provide[*page.Templator](injector, page.NewTemplator)

	do.Provide[*handle.FormHandler](injector, handle.NewFormHandler)
	do.Provide[*handle.GenerateHandler](injector, handle.NewGenerateHandler)
	do.Provide[*handle.ImageHandler](injector, handle.NewImageHandler)
	do.Provide[*handle.Router](injector, handle.NewRouter)

	return injector
}
