package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/creativity-code/planora/modules/api"
	"github.com/creativity-code/planora/modules/auth"
	"github.com/creativity-code/planora/modules/broadcast"
	"github.com/creativity-code/planora/modules/chat"
	"github.com/creativity-code/planora/modules/monitor"
	"github.com/creativity-code/planora/modules/report"
	"github.com/creativity-code/planora/modules/taskstore"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Planora - Task Management Core ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	taskModule := taskstore.NewModule()
	monitorModule := monitor.NewModule()
	authModule := auth.NewModule()
	chatModule := chat.NewModule()
	broadcastModule := broadcast.NewModule()
	reportModule := report.NewModule()
	apiModule := api.NewModule()

	// Inject the broadcast hub into the API module. The hub is shared
	// in-process state, not a request-reply service, so it bypasses the
	// ServiceContainer.
	apiModule.SetHub(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: providers first, then consumers of their services.
	app.Register(taskModule)      // task CRUD, reports, archive, search
	app.Register(monitorModule)   // timer expiry watcher
	app.Register(authModule)      // accounts, tokens, verification mail
	app.Register(chatModule)      // per-project channels
	app.Register(broadcastModule) // WebSocket hub + event fan-out
	app.Register(reportModule)    // PDF/DOCX rendering
	app.Register(apiModule)       // HTTP/WebSocket surface

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Event-Driven Updates:")
	log.Println("  - TaskCreated/Updated/Completed/Deleted -> broadcast -> user sessions")
	log.Println("  - MessageSent/UserJoined/UserLeft -> broadcast -> project channels")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                           - Health check")
	log.Println("  POST   /api/v1/auth/register             - Create account")
	log.Println("  POST   /api/v1/auth/verify-email         - Confirm verification code")
	log.Println("  POST   /api/v1/auth/login                - Issue token pair")
	log.Println("  POST   /api/v1/auth/refresh              - Rotate tokens")
	log.Println("  GET    /api/v1/tasks?date=YYYY-MM-DD     - List tasks for a day")
	log.Println("  POST   /api/v1/tasks                     - Create task")
	log.Println("  PUT    /api/v1/tasks/:id                 - Replace task")
	log.Println("  POST   /api/v1/tasks/:id/start           - Stamp start time")
	log.Println("  POST   /api/v1/tasks/:id/complete        - Mark completed")
	log.Println("  GET    /api/v1/tasks/search?q=           - Search tasks")
	log.Println("  GET    /api/v1/tasks/archive?year=&month= - Monthly archive")
	log.Println("  GET    /api/v1/report?start_date=&end_date= - Range report")
	log.Println("  GET    /api/v1/report/export/pdf         - Export report as PDF")
	log.Println("  GET    /api/v1/report/export/docx        - Export report as DOCX")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws?token=<access token>):", port)
	log.Println("  Message types: join, leave, message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
