package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/clinicore/opd-emr/internal/config"
	appointmentHandler "github.com/clinicore/opd-emr/internal/handler/appointment"
	billingHandler "github.com/clinicore/opd-emr/internal/handler/billing"
	clinicHandler "github.com/clinicore/opd-emr/internal/handler/clinic"
	clinicalnoteHandler "github.com/clinicore/opd-emr/internal/handler/clinicalnote"
	doctorHandler "github.com/clinicore/opd-emr/internal/handler/doctor"
	healthHandler "github.com/clinicore/opd-emr/internal/handler/health"
	laborderHandler "github.com/clinicore/opd-emr/internal/handler/laborder"
	labtestHandler "github.com/clinicore/opd-emr/internal/handler/labtest"
	patientHandler "github.com/clinicore/opd-emr/internal/handler/patient"
	pharmacyHandler "github.com/clinicore/opd-emr/internal/handler/pharmacy"
	prescriptionHandler "github.com/clinicore/opd-emr/internal/handler/prescription"
	seriesHandler "github.com/clinicore/opd-emr/internal/handler/series"
	"github.com/clinicore/opd-emr/internal/middleware"
	"github.com/clinicore/opd-emr/internal/repository/sqlite"
	"github.com/clinicore/opd-emr/internal/router"
	appointmentService "github.com/clinicore/opd-emr/internal/service/appointment"
	billingService "github.com/clinicore/opd-emr/internal/service/billing"
	catalogService "github.com/clinicore/opd-emr/internal/service/catalog"
	clinicService "github.com/clinicore/opd-emr/internal/service/clinic"
	clinicalnoteService "github.com/clinicore/opd-emr/internal/service/clinicalnote"
	doctorService "github.com/clinicore/opd-emr/internal/service/doctor"
	laborderService "github.com/clinicore/opd-emr/internal/service/laborder"
	patientService "github.com/clinicore/opd-emr/internal/service/patient"
	pharmacyService "github.com/clinicore/opd-emr/internal/service/pharmacy"
	prescriptionService "github.com/clinicore/opd-emr/internal/service/prescription"
	sequenceService "github.com/clinicore/opd-emr/internal/service/sequence"
	"github.com/clinicore/opd-emr/pkg/logger"
	"github.com/clinicore/opd-emr/pkg/metrics"
	"github.com/clinicore/opd-emr/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	// Initialize database
	db, err := sqlite.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := sqlite.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Initialize repositories
	seriesRepo := sqlite.NewSeriesRepository(db)
	patientRepo := sqlite.NewPatientRepository(db)
	doctorRepo := sqlite.NewDoctorRepository(db)
	labTestRepo := sqlite.NewLabTestRepository(db)
	prescriptionRepo := sqlite.NewPrescriptionRepository(db)
	labOrderRepo := sqlite.NewLabOrderRepository(db)
	billRepo := sqlite.NewBillRepository(db)
	pharmacyRepo := sqlite.NewPharmacyItemRepository(db)
	appointmentRepo := sqlite.NewAppointmentRepository(db)
	clinicalNoteRepo := sqlite.NewClinicalNoteRepository(db)
	clinicRepo := sqlite.NewClinicRepository(db)

	// Initialize metrics
	m := metrics.NewMetrics(cfg.Metrics.Namespace, "api")

	// Initialize services
	seqSvc := sequenceService.NewService(seriesRepo, m)
	patientSvc := patientService.NewService(patientRepo, seqSvc)
	doctorSvc := doctorService.NewService(doctorRepo)
	catalogSvc := catalogService.NewService(labTestRepo, m)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, patientRepo, doctorRepo, labTestRepo, seqSvc, m)
	labOrderSvc := laborderService.NewService(labOrderRepo, patientRepo, prescriptionRepo, seqSvc, m)
	billingSvc := billingService.NewService(billRepo, patientRepo, prescriptionRepo, labTestRepo, seqSvc, m)
	pharmacySvc := pharmacyService.NewService(pharmacyRepo, seqSvc)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, doctorRepo, seqSvc, m)
	clinicalNoteSvc := clinicalnoteService.NewService(clinicalNoteRepo, patientRepo, doctorRepo)
	clinicSvc := clinicService.NewService(clinicRepo)

	// Setup router
	r := router.New(m, router.Config{
		RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:  cfg.RateLimit.Burst,
		Timeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig: middleware.DefaultCORSConfig(),
	})

	r.Setup(
		healthHandler.NewHandler(db),
		seriesHandler.NewHandler(seqSvc),
		patientHandler.NewHandler(patientSvc),
		doctorHandler.NewHandler(doctorSvc),
		labtestHandler.NewHandler(catalogSvc),
		prescriptionHandler.NewHandler(prescriptionSvc),
		laborderHandler.NewHandler(labOrderSvc),
		billingHandler.NewHandler(billingSvc),
		pharmacyHandler.NewHandler(pharmacySvc),
		appointmentHandler.NewHandler(appointmentSvc),
		clinicalnoteHandler.NewHandler(clinicalNoteSvc),
		clinicHandler.NewHandler(clinicSvc),
	)

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
