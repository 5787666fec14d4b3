package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/lab"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/prescription"
	"github.com/hms/hms/internal/domain/security"
	"github.com/hms/hms/internal/domain/session"
	"github.com/hms/hms/internal/domain/tenant"
	"github.com/hms/hms/internal/domain/user"
	"github.com/hms/hms/internal/domain/vitals"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Multi-tenant Hospital Management System API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tenantCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HMS API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage hospital tenants",
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a hospital and print the generated admin credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			domain, _ := cmd.Flags().GetString("domain")
			license, _ := cmd.Flags().GetString("license")
			email, _ := cmd.Flags().GetString("email")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			master, err := db.NewMasterPool(ctx, cfg.MasterDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer master.Close()

			router := db.NewRouter(cfg.TenantSchemaPrefix, db.NewTenantOpener(cfg.MasterDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns), logger)
			defer router.CloseAll()

			userSvc := user.NewService(user.NewRepo(), user.NewRoleRepo(), logger)
			tenantSvc := tenant.NewService(tenant.NewRepo(master), router, userSvc, logger)

			res, err := tenantSvc.Register(ctx, tenant.RegisterInput{
				Name:          name,
				Domain:        domain,
				LicenseNumber: license,
				ContactEmail:  email,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Hospital registered: %s (%s)\n", res.Tenant.Name, res.Tenant.ID)
			fmt.Printf("Verification token: %s\n", derefOrEmpty(res.Tenant.VerificationToken))
			if res.AdminUsername != "" {
				fmt.Printf("Admin username: %s\n", res.AdminUsername)
				fmt.Printf("Admin password: %s (change on first login)\n", res.AdminPassword)
			}
			return nil
		},
	}
	registerCmd.Flags().String("name", "", "Hospital name")
	registerCmd.Flags().String("domain", "", "Unique tenant domain")
	registerCmd.Flags().String("license", "", "Hospital license number")
	registerCmd.Flags().String("email", "", "Admin contact email")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Activate a hospital using its verification token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := cmd.Flags().GetString("token")
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			master, err := db.NewMasterPool(ctx, cfg.MasterDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer master.Close()

			router := db.NewRouter(cfg.TenantSchemaPrefix, db.NewTenantOpener(cfg.MasterDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns), logger)
			defer router.CloseAll()

			userSvc := user.NewService(user.NewRepo(), user.NewRoleRepo(), logger)
			tenantSvc := tenant.NewService(tenant.NewRepo(master), router, userSvc, logger)

			t, err := tenantSvc.Verify(ctx, token)
			if err != nil {
				return err
			}
			fmt.Printf("Hospital verified: %s (%s) is now %s\n", t.Name, t.Domain, t.Status)
			return nil
		},
	}
	verifyCmd.Flags().String("token", "", "Verification token from registration")

	cmd.AddCommand(registerCmd)
	cmd.AddCommand(verifyCmd)
	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	master, err := db.NewMasterPool(ctx, cfg.MasterDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to master database")
	}
	defer master.Close()
	logger.Info().Msg("connected to master database")

	router := db.NewRouter(cfg.TenantSchemaPrefix, db.NewTenantOpener(cfg.MasterDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns), logger)
	defer router.CloseAll()

	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  []byte(cfg.JWTAccessSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	var sender notification.EmailSender
	if cfg.SMTPHost != "" {
		sender = &notification.SMTPSender{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom}
	} else {
		sender = &notification.LogSender{Logger: logger}
	}
	mailer := notification.NewMailer(sender, cfg.FrontendURL, logger)

	// Repositories. Tenant data lives in the master registry; everything
	// else reads its pool from the request context.
	tenantRepo := tenant.NewRepo(master)
	userRepo := user.NewRepo()
	roleRepo := user.NewRoleRepo()
	patientRepo := patient.NewRepo()
	prescriptionRepo := prescription.NewRepo()
	labRepo := lab.NewRepo()
	vitalsRepo := vitals.NewRepo()
	appointmentRepo := appointment.NewRepo()

	// Services
	userSvc := user.NewService(userRepo, roleRepo, logger)
	tenantSvc := tenant.NewService(tenantRepo, router, userSvc, logger)
	sessionSvc := session.NewService(tenantRepo, router, userRepo, userSvc, tokens, logger)
	securitySvc := security.NewService(tenantRepo, router, userRepo, security.NewTokenRepo(), security.NewHistoryRepo(), mailer, logger)
	patientSvc := patient.NewService(patientRepo, logger)
	prescriptionSvc := prescription.NewService(prescriptionRepo, patientRepo, logger)
	labSvc := lab.NewService(labRepo, logger)
	vitalsSvc := vitals.NewService(vitalsRepo, logger)
	appointmentSvc := appointment.NewService(appointmentRepo, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(auth.Authenticate(tokens, auth.PublicPathSkipper))
	e.Use(db.TenantMiddleware(router, auth.PublicPathSkipper))
	e.Use(middleware.Audit(logger))

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(master, router))

	apiV1 := e.Group("/api/v1")

	tenant.NewHandler(tenantSvc).RegisterRoutes(apiV1)
	session.NewHandler(sessionSvc).RegisterRoutes(apiV1)
	security.NewHandler(securitySvc).RegisterRoutes(apiV1)
	user.NewHandler(userSvc).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	lab.NewHandler(labSvc).RegisterRoutes(apiV1)
	vitals.NewHandler(vitalsSvc).RegisterRoutes(apiV1)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
