package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ventia-app/ventia/assistant/application"
	"github.com/ventia-app/ventia/assistant/domain"
	"github.com/ventia-app/ventia/assistant/providers"
	"github.com/ventia-app/ventia/core/config"
	"github.com/ventia-app/ventia/core/database"
	reportsDomain "github.com/ventia-app/ventia/reports/domain"
	reportsRepo "github.com/ventia-app/ventia/reports/repository"
	reportsUsecase "github.com/ventia-app/ventia/reports/usecase"
	"github.com/ventia-app/ventia/ui/rest"
	"github.com/ventia-app/ventia/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Levanta el API http del asistente",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := config.Global

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalln("[DB] No se pudo abrir la base de datos: ", err.Error())
	}
	if err := db.AutoMigrate(
		&reportsDomain.Producto{},
		&reportsDomain.Venta{},
		&reportsDomain.VentaItem{},
	); err != nil {
		logrus.Fatalln("[DB] Fallo la migracion: ", err.Error())
	}
	if cfg.Database.Seed {
		if err := reportsRepo.SeedDemo(db); err != nil {
			logrus.Errorf("[DB] No se pudo cargar la demo: %v", err)
		}
	}

	orchestrator := buildOrchestrator(cfg)
	reportService := reportsUsecase.NewReportService(
		reportsUsecase.DefaultServiceConfig(),
		reportsRepo.NewReportRepository(db, nil),
		nil,
	)

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "Ventia Assistant",
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	rest.InitRestAssistant(apiGroup, orchestrator, reportService)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Señal de apagado recibida, cerrando...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error durante el apagado de Fiber: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

// buildOrchestrator wires the resolver. Without an API key the hosted path
// is skipped entirely and the rule cascade answers everything.
func buildOrchestrator(cfg *config.Config) *application.Orchestrator {
	var requester domain.IntentRequester
	if cfg.AI.APIKey != "" {
		requester = providers.NewGeminiRequester(providers.GeminiConfig{
			APIKey:        cfg.AI.APIKey,
			Model:         cfg.AI.Model,
			BaseURL:       cfg.AI.BaseURL,
			APIVersion:    cfg.AI.APIVersion,
			Timeout:       time.Duration(cfg.AI.TimeoutMs) * time.Millisecond,
			MaxInputChars: cfg.AI.MaxInputChars,
		}, nil)
	} else {
		logrus.Warn("[GEMINI] GEMINI_API_KEY no definido, solo reglas locales")
	}

	extractorCfg := application.DefaultExtractorConfig()
	extractorCfg.DefaultDias = cfg.Assistant.DefaultDias
	extractorCfg.DefaultUmbral = cfg.Assistant.DefaultUmbral

	return application.NewOrchestrator(
		application.OrchestratorConfig{Greeting: cfg.Assistant.Greeting},
		requester,
		application.NewRuleExtractor(extractorCfg),
		nil,
	)
}
