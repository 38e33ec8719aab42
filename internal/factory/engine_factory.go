package factory

import (
	"github.com/mikey/outreach-personalizer/internal/assembler"
	"github.com/mikey/outreach-personalizer/internal/catalog"
	"github.com/mikey/outreach-personalizer/internal/config"
	"github.com/mikey/outreach-personalizer/internal/spamcheck"
	"github.com/mikey/outreach-personalizer/internal/subject"
	"github.com/mikey/outreach-personalizer/internal/utils"
	"go.uber.org/zap"
)

// EngineFactory builds the catalog-backed engine components
type EngineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config, logger *zap.Logger) *EngineFactory {
	return &EngineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTemplateCatalog loads the template catalog, falling back to the
// built-in set on failure
func (f *EngineFactory) CreateTemplateCatalog() *catalog.Catalog {
	return catalog.NewCatalog(f.cfg.GetString("catalog.templates_path"), f.logger)
}

// CreateTokenResolver creates the token resolver
func (f *EngineFactory) CreateTokenResolver() *catalog.Resolver {
	return catalog.NewResolver(f.logger)
}

// CreateSpamEngine loads the spam rule engine, falling back to the built-in
// rules on failure
func (f *EngineFactory) CreateSpamEngine() *spamcheck.Engine {
	return spamcheck.NewEngine(f.cfg.GetString("catalog.spam_rules_path"), f.logger)
}

// CreateSubjectGenerator creates the subject line generator
func (f *EngineFactory) CreateSubjectGenerator(cat *catalog.Catalog, resolver *catalog.Resolver, text *utils.TextProcessor) *subject.Generator {
	return subject.NewGenerator(cat, resolver, text, f.cfg.GetGenerator(), f.logger)
}

// CreateAssembler creates the deterministic body assembler
func (f *EngineFactory) CreateAssembler(cat *catalog.Catalog, resolver *catalog.Resolver) *assembler.Assembler {
	return assembler.NewAssembler(cat, resolver, f.logger)
}
