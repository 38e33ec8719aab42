package factory

import (
	"fmt"

	"github.com/mikey/outreach-personalizer/internal/adapters/bedrock"
	"github.com/mikey/outreach-personalizer/internal/adapters/gemini"
	"github.com/mikey/outreach-personalizer/internal/adapters/openai"
	"github.com/mikey/outreach-personalizer/internal/config"
	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates content generators
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateContentGenerator creates a content generator based on the
// configuration. Provider "none" yields a nil generator: the pipeline then
// always uses the deterministic assembler body.
func (f *LLMFactory) CreateContentGenerator() (core.ContentGenerator, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "", "none":
		f.logger.Info("No LLM provider configured, body generation uses the deterministic assembler")
		return nil, nil
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger)
		return factory.CreateContentGenerator()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger)
		return factory.CreateContentGenerator()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger)
		return factory.CreateContentGenerator()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
