package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/samber/do"
	"github.com/tobyward/chronoflux/internal/log"
)

//go:embed assets/index.html
var indexTmpl string

// Option is one entry of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type Params struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	Seed           uint32
	Samplers       []Option
	Ratios         []Option

	ImageURL string
	Elapsed  string
	Error    string
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(*do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (t *Templator) Render(ctx context.Context, params Params) ([]byte, error) {
	t.once.Do(func() {
		t.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log.FromContextOrDiscard(ctx).WithGroup("templator").Info("rendering page")

	var data bytes.Buffer
	if err := t.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
