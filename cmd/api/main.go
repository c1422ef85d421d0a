package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pointage-hq/pointage-backend-go/internal/config"
	appHTTP "github.com/pointage-hq/pointage-backend-go/internal/handler/http"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/jwt"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/sse"
	"github.com/pointage-hq/pointage-backend-go/internal/repository/postgresql"
	anomalyService "github.com/pointage-hq/pointage-backend-go/internal/service/anomaly"
	attendanceService "github.com/pointage-hq/pointage-backend-go/internal/service/attendance"
	auditService "github.com/pointage-hq/pointage-backend-go/internal/service/audit"
	authService "github.com/pointage-hq/pointage-backend-go/internal/service/auth"
	employeeService "github.com/pointage-hq/pointage-backend-go/internal/service/employee"
	notificationService "github.com/pointage-hq/pointage-backend-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		slog.Warn("unknown timezone, falling back to UTC", "timezone", cfg.App.Timezone)
		loc = time.UTC
	}

	accountRepo := postgresql.NewAccountRepository(db)
	profileRepo := postgresql.NewProfileRepository(db)
	decisionRepo := postgresql.NewDecisionRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	anomalyRepo := postgresql.NewAnomalyRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	txManager := postgresql.NewTxManager(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	hub := sse.NewHub()

	dispatcher := notificationService.NewDispatcher(notificationRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer dispatcher.Stop()

	auditor := auditService.NewAuditService(auditRepo)
	detector := anomalyService.NewDetector(anomalyRepo, cfg.Attendance, loc)

	handlers := appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(jwtService, authService.NewAuthService(accountRepo, jwtService, auditor)),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceService.NewSessionManager(sessionRepo, accountRepo, detector, auditor, dispatcher, loc)),
		Employee:     appHTTP.NewEmployeeHandler(employeeService.NewApprovalService(txManager, profileRepo, decisionRepo, accountRepo, auditor, dispatcher)),
		Anomaly:      appHTTP.NewAnomalyHandler(anomalyService.NewAnomalyService(anomalyRepo, auditor, dispatcher)),
		Audit:        appHTTP.NewAuditHandler(auditor),
		Notification: appHTTP.NewNotificationHandler(dispatcher, jwtService),
	}

	router := appHTTP.NewRouter(cfg, jwtService, handlers)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: stop accepting requests, then drain notifications.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
