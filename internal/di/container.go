package di

import (
	"go.uber.org/dig"

	"github.com/mikey/outreach-personalizer/internal/assembler"
	"github.com/mikey/outreach-personalizer/internal/catalog"
	"github.com/mikey/outreach-personalizer/internal/config"
	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/mikey/outreach-personalizer/internal/factory"
	"github.com/mikey/outreach-personalizer/internal/issues"
	"github.com/mikey/outreach-personalizer/internal/logging"
	"github.com/mikey/outreach-personalizer/internal/spamcheck"
	"github.com/mikey/outreach-personalizer/internal/subject"
	"github.com/mikey/outreach-personalizer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}

	// Register catalogs and resolver
	if err := container.Provide(func(f *factory.EngineFactory) *catalog.Catalog {
		return f.CreateTemplateCatalog()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EngineFactory) *catalog.Resolver {
		return f.CreateTokenResolver()
	}); err != nil {
		return nil, err
	}

	// Register spam engine
	if err := container.Provide(func(f *factory.EngineFactory) *spamcheck.Engine {
		return f.CreateSpamEngine()
	}); err != nil {
		return nil, err
	}

	// Register generation components
	if err := container.Provide(issues.NewExtractor); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EngineFactory, cat *catalog.Catalog, resolver *catalog.Resolver, text *utils.TextProcessor) *subject.Generator {
		return f.CreateSubjectGenerator(cat, resolver, text)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EngineFactory, cat *catalog.Catalog, resolver *catalog.Resolver) *assembler.Assembler {
		return f.CreateAssembler(cat, resolver)
	}); err != nil {
		return nil, err
	}

	// Register optional content generator
	if err := container.Provide(func(f *factory.LLMFactory) (core.ContentGenerator, error) {
		return f.CreateContentGenerator()
	}); err != nil {
		return nil, err
	}

	// Bind concrete components to the core ports
	if err := container.Provide(func(e *issues.Extractor) core.IssueExtractor { return e }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(g *subject.Generator) core.SubjectGenerator { return g }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(a *assembler.Assembler) core.BodyAssembler { return a }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(e *spamcheck.Engine) core.SpamChecker { return e }); err != nil {
		return nil, err
	}

	// Register personalization service
	if err := container.Provide(core.NewPersonalizationService); err != nil {
		return nil, err
	}

	return container, nil
}
