package gemini

import (
	"github.com/mikey/outreach-personalizer/internal/config"
	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of GeminiGenerator
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiGenerator instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateContentGenerator creates a new GeminiGenerator
func (f *Factory) CreateContentGenerator() (core.ContentGenerator, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewGeminiGenerator(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
}
