package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/saveurlabs/saveur-agent/agent/agents/orchestrator"
	specialistx "github.com/saveurlabs/saveur-agent/agent/agents/specialist"
	swarmx "github.com/saveurlabs/saveur-agent/agent/agents/swarm"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	eventsx "github.com/saveurlabs/saveur-agent/agent/events"
	llmx "github.com/saveurlabs/saveur-agent/agent/llm"
	memoryx "github.com/saveurlabs/saveur-agent/agent/memory"
	menux "github.com/saveurlabs/saveur-agent/agent/menu"
	orderx "github.com/saveurlabs/saveur-agent/agent/order"
	toolx "github.com/saveurlabs/saveur-agent/agent/tool"
	configx "github.com/saveurlabs/saveur-agent/pkg/config"
	httpapix "github.com/saveurlabs/saveur-agent/pkg/httpapi"
	_ "github.com/saveurlabs/saveur-agent/pkg/logger/autoload"
	openrouterx "github.com/saveurlabs/saveur-agent/pkg/openrouter"
	qstashx "github.com/saveurlabs/saveur-agent/pkg/qstash"
)

type AppConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" split_words:"true" default:":8080"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	memoryCfg := configx.MustNew[memoryx.Config]("MEMORY")
	swarmCfg := configx.MustNew[swarmx.Config]("SWARM")
	postgresCfg := configx.MustNew[menux.PostgresConfig]("POSTGRES")

	registry, err := specialistx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build agent registry")
	}

	openRouterClient := openrouterx.NewClient(llmCfg.OpenRouterDefault())
	if openRouterClient == nil {
		log.Fatal().Msg("initialize openrouter client")
	}

	catalog, err := menux.NewPostgresCatalog(*postgresCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open menu catalog")
	}

	placer, err := orderx.NewPostgresPlacer(orderx.PostgresConfig(*postgresCfg))
	if err != nil {
		log.Fatal().Err(err).Msg("open order store")
	}

	memory := memoryx.NewService(*memoryCfg)
	coordinator := swarmx.NewCoordinator(registry, *swarmCfg)
	tools := toolx.NewInvoker(registry)
	publisher := buildEventPublisher()

	orchestrator, err := orchestratorx.New(memory, catalog, registry, coordinator, tools, publisher)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	httpapix.NewHandler(orchestrator, placer, openRouterClient).RegisterRoutes(e)

	log.Info().Str("addr", appCfg.ListenAddr).Msg("starting server")
	if err := e.Start(appCfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// buildEventPublisher wires QStash when configured; eventing is optional and
// its absence only disables turn notifications.
func buildEventPublisher() contractx.EventPublisher {
	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		log.Info().Msg("qstash not configured, turn events disabled")
		return nil
	}
	eventsCfg, err := configx.New[eventsx.Config]("EVENTS")
	if err != nil {
		log.Info().Msg("event destination not configured, turn events disabled")
		return nil
	}

	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		log.Warn().Err(err).Msg("qstash client init failed, turn events disabled")
		return nil
	}
	publisher, err := eventsx.NewQStashPublisher(client, *eventsCfg)
	if err != nil {
		log.Warn().Err(err).Msg("event publisher init failed, turn events disabled")
		return nil
	}
	return publisher
}
