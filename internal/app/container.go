package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/doeshing/termhelper/internal/application/advisor"
	"github.com/doeshing/termhelper/internal/application/doctor"
	"github.com/doeshing/termhelper/internal/application/updates"
	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/infrastructure/ai"
	"github.com/doeshing/termhelper/internal/infrastructure/config"
	contextcollector "github.com/doeshing/termhelper/internal/infrastructure/context"
	"github.com/doeshing/termhelper/internal/infrastructure/packages"
	"github.com/doeshing/termhelper/internal/infrastructure/runner"
	"github.com/doeshing/termhelper/internal/infrastructure/security"
	"github.com/doeshing/termhelper/internal/pkg/logger"
	"github.com/doeshing/termhelper/internal/ports"
)

// Options carries the startup flags that influence wiring.
type Options struct {
	EnvFile string
	Debug   bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	Logger         ports.Logger
	Host           *contextcollector.BasicCollector
	AdvisorService *advisor.Service
	UpdateService  *updates.Service
	DoctorService  *doctor.Service
}

// BuildContainer loads the configuration once and constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewEnvLoader(opts.EnvFile)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg.LogLevel)
	collector := contextcollector.NewBasicCollector()

	guardrail, err := security.NewGuardrail(cfg.Security)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid guardrail rules").
			WithCause(err)
	}

	procRunner := runner.NewLocalRunner(log,
		runner.WithShell(cfg.Execution.Shell),
		runner.WithElevation(cfg.ElevationWrapper()),
	)
	registry := packages.NewRegistry(cfg.Execution.Python)

	advisorService := &advisor.Service{
		Provider:        ai.NewAdvisor(ai.NewHTTPClient(cfg, log)),
		SecurityService: guardrail,
		Runner:          procRunner,
		Logger:          log,
	}

	updateService := &updates.Service{
		Registry:  registry,
		Runner:    procRunner,
		Host:      collector,
		Summarize: packages.Summarize,
		Logger:    log,
	}

	doctorService := &doctor.Service{
		ConfigProvider:   cfgLoader,
		SecurityService:  guardrail,
		ContextCollector: collector,
		Registry:         registry,
	}

	log.Debug("container ready", map[string]interface{}{
		"os":              string(collector.OS()),
		"guardrail":       cfg.Security.Enabled,
		"guardrail_rules": guardrail.RuleCount(),
		"api_key_source":  cfg.LLM.APIKeySource,
	})

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		Logger:         log,
		Host:           collector,
		AdvisorService: advisorService,
		UpdateService:  updateService,
		DoctorService:  doctorService,
	}, nil
}
