package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/local-services-api/internal/metrics"
	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/queue"
	"github.com/iliyamo/local-services-api/internal/repository"
	"github.com/iliyamo/local-services-api/internal/service"
	"github.com/iliyamo/local-services-api/internal/testutil"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// env bundles the services over one fresh database.
type env struct {
	db        *sql.DB
	creds     *service.CredentialStore
	directory *service.Directory
	ledger    *service.Ledger
	events    *recorder
	metrics   *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenDB(t)
	v := validation.New()
	customers := repository.NewCustomerRepo(db)
	pros := repository.NewProfessionalRepo(db)
	rec := &recorder{}
	m := metrics.New("test")
	return &env{
		db:        db,
		creds:     service.NewCredentialStore(customers, pros, v, bcrypt.MinCost),
		directory: service.NewDirectory(repository.NewProfileRepo(db), v),
		ledger:    service.NewLedger(repository.NewBookingRepo(db), customers, pros, v, rec, m, zap.NewNop()),
		events:    rec,
		metrics:   m,
	}
}

func (e *env) customer(t *testing.T, email string) model.Identity {
	t.Helper()
	id, err := e.creds.Register(context.Background(), model.RoleCustomer, service.Registration{
		Name: "Alice", Email: email, Password: "password123",
	})
	require.NoError(t, err)
	return id
}

func (e *env) professional(t *testing.T, email, serviceType string) model.Identity {
	t.Helper()
	id, err := e.creds.Register(context.Background(), model.RoleProfessional, service.Registration{
		Name: "Pat", Email: email, Password: "password123", ServiceType: serviceType,
		Address: "1 Main St", PhoneNumber: "555-0100", LicenseID: "LIC-1",
	})
	require.NoError(t, err)
	return id
}

func (e *env) booking(t *testing.T, customerID uint64, serviceType string) model.Booking {
	t.Helper()
	b, err := e.ledger.CreateBooking(context.Background(), customerID, service.BookingInput{
		Service: serviceType, Date: "2024-05-02", Time: "10:00", Description: "fix sink", Price: 80, Location: "Here",
	})
	require.NoError(t, err)
	return b
}

// recorder is an EventPublisher that keeps what it was given.
type recorder struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
