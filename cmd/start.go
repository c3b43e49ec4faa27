package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jarmstrongdbrx/data-entry-app/core/config"
	"github.com/jarmstrongdbrx/data-entry-app/core/database"
	"github.com/jarmstrongdbrx/data-entry-app/core/loader"
	"github.com/jarmstrongdbrx/data-entry-app/core/logger"
	"github.com/jarmstrongdbrx/data-entry-app/core/middleware/auth"
	"github.com/jarmstrongdbrx/data-entry-app/core/middleware/rayid"
	"github.com/jarmstrongdbrx/data-entry-app/core/storage"
	"github.com/jarmstrongdbrx/data-entry-app/feature/editor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/jarmstrongdbrx/data-entry-app/docs/swagger"
)

// @title Configuration Table Editor API
// @version 1.0
// @description Schema-aware editor for configuration tables.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the editor server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the warehouse. Unlike the archive, this is not
		// optional: no connection, no editor.
		db, err := database.Connect(cfg.Warehouse)
		if err != nil {
			logg.Fatal("Warehouse connection failed", zap.Error(err))
		}
		logg = logg.With(zap.String("schema", cfg.Warehouse.Schema))
		logg.Info("Connected to warehouse")

		// 4. Initialize the snapshot archive storage when enabled.
		var store storage.Client
		if cfg.Storage.Enabled {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			logg.Info("Snapshot archive enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(editor.NewFeature(db, store, cfg.Storage.Bucket, logg, cfg.Warehouse.Schema))

		// Middleware Registration
		// RayID must be first so everything downstream is traceable.
		app.Use(rayid.New())

		// Request logging through zap with the ray id attached.
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger documentation (public).
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth protects everything else.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
