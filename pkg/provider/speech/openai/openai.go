// Package openai provides a speech.Synthesizer backed by the OpenAI
// text-to-speech API.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
)

// Speed bounds accepted by the OpenAI speech endpoint.
const (
	minSpeed = 0.25
	maxSpeed = 4.0
)

// Synthesizer implements speech.Synthesizer using the OpenAI speech API.
type Synthesizer struct {
	client oai.Client
	model  oai.SpeechModel
}

// Compile-time interface assertion.
var _ speech.Synthesizer = (*Synthesizer)(nil)

// config holds optional configuration for the synthesizer.
type config struct {
	baseURL string
	model   string
	timeout time.Duration
}

// Option is a functional option for Synthesizer.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithModel selects the speech model (e.g. "tts-1", "tts-1-hd").
// The default is "tts-1" — faster, which suits rap delivery.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs an OpenAI speech Synthesizer.
func New(apiKey string, opts ...Option) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty: %w", speech.ErrUnavailable)
	}

	cfg := &config{model: string(oai.SpeechModelTTS1)}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Synthesizer{
		client: oai.NewClient(reqOpts...),
		model:  oai.SpeechModel(cfg.model),
	}, nil
}

// Synthesize implements speech.Synthesizer. The response is MP3 audio at
// whatever channel layout the service produces.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice speech.Voice) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("openai: text must not be empty")
	}

	params := oai.AudioSpeechNewParams{
		Model:          s.model,
		Voice:          oai.AudioSpeechNewParamsVoice(voice.ID),
		Input:          text,
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if voice.Speed != 0 {
		params.Speed = oai.Float(clampSpeed(voice.Speed))
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: speech request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read speech response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openai: speech response was empty")
	}
	return data, nil
}

// clampSpeed keeps the speed multiplier within the range the API accepts.
func clampSpeed(speed float64) float64 {
	if speed < minSpeed {
		return minSpeed
	}
	if speed > maxSpeed {
		return maxSpeed
	}
	return speed
}
