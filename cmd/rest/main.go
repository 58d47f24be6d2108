package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"confidential-chat-be/internal/bootstrap"
	"confidential-chat-be/internal/config"
	"confidential-chat-be/internal/server"
	"confidential-chat-be/internal/tracer"
	"confidential-chat-be/pkg/database"

	"gorm.io/gorm/logger"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.Connection, logger.Warn)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Migrations run here only, never on the request path
	ran, err := database.Migrate(gormDB)
	if err != nil {
		log.Panicf("Migration failed: %v", err)
	}
	if len(ran) > 0 {
		log.Printf("Applied migrations: %v", ran)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 5. Initialize Tracer before the HTTP middleware picks up the provider
	shutdownTracer := tracer.InitTracer("confidential-chat-core", cfg.App.Environment, cfg.Tracing, container.Logger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Start Background Services
	go func() {
		log.Println("Background: Starting Escalation Consumer...")
		if err := container.EscalationConsumer.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go container.ExpiryService.Start(ctx)

	// 7. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 8. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
