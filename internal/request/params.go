package request

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultNegativePrompt = "low quality, blurry, text, watermark"
	DefaultSteps          = 28
	DefaultGuidanceScale  = 3.0

	MinSteps         = 20
	MaxSteps         = 50
	MinGuidanceScale = 0.0
	MaxGuidanceScale = 10.0
)

var ErrEmptyPrompt = errors.New("prompt must not be empty")

// Sampler names the denoising method the service uses during generation.
type Sampler string

const (
	SamplerEulerA Sampler = "euler_a"
	SamplerEuler  Sampler = "euler"
	SamplerHeun   Sampler = "heun"
	SamplerDPM2   Sampler = "dpm_2"
	SamplerDPM2A  Sampler = "dpm_2_a"
	SamplerLMS    Sampler = "lms"

	DefaultSampler = SamplerEulerA
)

func Samplers() []Sampler {
	return []Sampler{SamplerEulerA, SamplerEuler, SamplerHeun, SamplerDPM2, SamplerDPM2A, SamplerLMS}
}

func ParseSampler(s string) (Sampler, error) {
	for _, known := range Samplers() {
		if Sampler(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown sampler %q", s)
}

// Ratio is one of the five fixed aspect-ratio presets. Width and height are
// never chosen freely; they always come from the preset table.
type Ratio string

const (
	RatioSquare    Ratio = "square"
	RatioPortrait  Ratio = "portrait"
	RatioLandscape Ratio = "landscape"
	RatioWide      Ratio = "wide"
	RatioTall      Ratio = "tall"

	DefaultRatio = RatioSquare
)

func Ratios() []Ratio {
	return []Ratio{RatioSquare, RatioPortrait, RatioLandscape, RatioWide, RatioTall}
}

func ParseRatio(s string) (Ratio, error) {
	for _, known := range Ratios() {
		if Ratio(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown aspect ratio %q", s)
}

func (r Ratio) Size() (width, height int) {
	switch r {
	case RatioPortrait:
		return 768, 1024
	case RatioLandscape:
		return 1024, 768
	case RatioWide:
		return 1024, 576
	case RatioTall:
		return 576, 1024
	default:
		return 1024, 1024
	}
}

func (r Ratio) Label() string {
	switch r {
	case RatioPortrait:
		return "Portrait (3:4)"
	case RatioLandscape:
		return "Landscape (4:3)"
	case RatioWide:
		return "Wide (16:9)"
	case RatioTall:
		return "Tall (9:16)"
	default:
		return "Square (1:1)"
	}
}

// Params is the immutable record a generation request is built from.
type Params struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	GuidanceScale  float64
	Seed           uint32
	Sampler        Sampler
	Steps          int
}

// Collect builds Params from submitted form values. Absent fields take their
// defaults; present fields must parse and fall inside their ranges. The only
// hard precondition is a non-blank prompt, checked before anything else so an
// empty submission never reaches the network.
func Collect(values url.Values) (Params, error) {
	prompt := strings.TrimSpace(values.Get("prompt"))
	if prompt == "" {
		return Params{}, ErrEmptyPrompt
	}

	params := Params{
		Prompt:         prompt,
		NegativePrompt: DefaultNegativePrompt,
		GuidanceScale:  DefaultGuidanceScale,
		Seed:           RandomSeed(),
		Sampler:        DefaultSampler,
		Steps:          DefaultSteps,
	}
	params.Width, params.Height = DefaultRatio.Size()

	if values.Has("negative_prompt") {
		params.NegativePrompt = values.Get("negative_prompt")
	}

	if v := values.Get("steps"); v != "" {
		steps, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("invalid steps %q", v)
		}
		if steps < MinSteps || steps > MaxSteps {
			return Params{}, fmt.Errorf("steps must be between %d and %d", MinSteps, MaxSteps)
		}
		params.Steps = steps
	}

	if v := values.Get("guidance_scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Params{}, fmt.Errorf("invalid guidance scale %q", v)
		}
		if scale < MinGuidanceScale || scale > MaxGuidanceScale {
			return Params{}, fmt.Errorf("guidance scale must be between %g and %g", MinGuidanceScale, MaxGuidanceScale)
		}
		params.GuidanceScale = scale
	}

	if v := values.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || seed > math.MaxUint32 {
			return Params{}, fmt.Errorf("invalid seed %q", v)
		}
		params.Seed = uint32(seed)
	}

	if v := values.Get("sampler"); v != "" {
		sampler, err := ParseSampler(v)
		if err != nil {
			return Params{}, err
		}
		params.Sampler = sampler
	}

	if v := values.Get("aspect_ratio"); v != "" {
		ratio, err := ParseRatio(v)
		if err != nil {
			return Params{}, err
		}
		params.Width, params.Height = ratio.Size()
	}

	return params, nil
}

func RandomSeed() uint32 {
	return rand.Uint32()
}
