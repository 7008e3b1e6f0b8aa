package router

import (
	"database/sql"
	"net/http"
	"time"

	"manage-breast-screening/internal/adapters/capabilities/roles"
	mem "manage-breast-screening/internal/adapters/storage/memory"
	pg "manage-breast-screening/internal/adapters/storage/postgres"
	_ "manage-breast-screening/internal/docs"
	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/middleware"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/platform/metrics"
	"manage-breast-screening/internal/ports/auth"
	"manage-breast-screening/internal/ports/capabilities"
	"manage-breast-screening/internal/ports/tx"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Storage bundles the repositories of one backend so that the HTTP layer
// and the seed command share the same wiring.
type Storage struct {
	Tx           tx.Runner
	Participants participants.Repository
	Clinics      clinics.Repository
	Appointments appointments.Repository
	Audit        audit.Repository
	Locator      audit.Locator
}

func PostgresStorage(db *sql.DB) Storage {
	return Storage{
		Tx:           pg.NewTxRunner(db),
		Participants: pg.NewParticipantsRepo(db),
		Clinics:      pg.NewClinicsRepo(db),
		Appointments: pg.NewAppointmentsRepo(db),
		Audit:        pg.NewAuditRepo(db),
		Locator:      pg.NewLocator(db),
	}
}

func MemoryStorage(s *mem.Store) Storage {
	return Storage{
		Tx:           s,
		Participants: s.Participants(),
		Clinics:      s.Clinics(),
		Appointments: s.Appointments(),
		Audit:        s.Audit(),
		Locator:      s.Locator(),
	}
}

type Options struct {
	AuthVerifier auth.AuthVerifier // nil = dev mode debug headers

	// DB selects Postgres. Without it Store is used, or a fresh in-memory one.
	DB    *sql.DB
	Store *mem.Store

	Log      logger.Logger
	Registry *prometheus.Registry
	Resolver capabilities.CapabilitiesResolver

	Location            *time.Location
	Now                 func() time.Time
	AuditExcludedFields []string
}

// Services are the domain services behind the routes.
type Services struct {
	Participants *participants.Service
	Clinics      *clinics.Service
	Appointments *appointments.Service
	Audit        *audit.Service
	AuditFactory *audit.Factory
}

// NewServices wires the domain services on top of st.
func NewServices(st Storage, log logger.Logger, m *metrics.Metrics, loc *time.Location, now func() time.Time, excluded []string) Services {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}

	auditOpts := []audit.Option{
		audit.WithLocator(st.Locator),
		audit.WithClock(now),
		audit.WithMetrics(m),
	}
	if len(excluded) > 0 {
		auditOpts = append(auditOpts, audit.WithExcludedFields(excluded...))
	}
	factory := audit.NewFactory(st.Audit, auditOpts...)

	participantsSvc := participants.NewService(st.Participants, st.Tx, factory, log)
	clinicsSvc := clinics.NewService(st.Clinics, st.Tx, factory, log,
		clinics.WithLocation(loc),
		clinics.WithMetrics(m),
		clinics.WithClock(now),
	)
	appointmentsSvc := appointments.NewService(st.Appointments, clinicsSvc, st.Tx, factory, log,
		appointments.WithLocation(loc),
		appointments.WithMetrics(m),
		appointments.WithClock(now),
		appointments.WithEpisodes(participantsSvc),
		appointments.WithParticipants(participantsSvc),
	)

	return Services{
		Participants: participantsSvc,
		Clinics:      clinicsSvc,
		Appointments: appointmentsSvc,
		Audit:        audit.NewService(st.Audit, log),
		AuditFactory: factory,
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	resolver := opts.Resolver
	if resolver == nil {
		resolver = roles.NewResolver(nil, false)
	}

	var st Storage
	switch {
	case opts.DB != nil:
		st = PostgresStorage(opts.DB)
	case opts.Store != nil:
		st = MemoryStorage(opts.Store)
	default:
		st = MemoryStorage(mem.NewStore())
	}
	svcs := NewServices(st, log, m, opts.Location, opts.Now, opts.AuditExcludedFields)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.AccessLog(log, m))
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	clinics.RegisterRoutes(r, svcs.Clinics, resolver)
	appointments.RegisterRoutes(r, svcs.Appointments, resolver)
	participants.RegisterRoutes(r, svcs.Participants, resolver)
	audit.RegisterRoutes(r, svcs.Audit, resolver)

	return r
}
