package health

import (
	"context"
	"net/http"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	checkTimeout = 5 * time.Second
)

// Database is the part of *sql.DB the health check needs.
type Database interface {
	PingContext(ctx context.Context) error
}

// Queue is satisfied by *queue.RabbitMQ.
type Queue interface {
	Ping() error
}

type Handler struct {
	db     Database
	queue  Queue
	engine *templating.Engine
	now    func() time.Time
}

func NewHandler(db Database, queue Queue, engine *templating.Engine) *Handler {
	return &Handler{
		db:     db,
		queue:  queue,
		engine: engine,
		now:    time.Now,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents a single health check
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func healthy(msg string) Check   { return Check{Status: StatusHealthy, Message: msg} }
func unhealthy(msg string) Check { return Check{Status: StatusUnhealthy, Message: msg} }

// Health reports the database, the queue and the template engine. Any
// unhealthy check turns the whole response into a 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := map[string]Check{
		"database":  h.checkDatabase(ctx),
		"queue":     h.checkQueue(),
		"templates": h.checkEngine(),
	}

	response := HealthResponse{
		Status:    StatusHealthy,
		Checks:    checks,
		Timestamp: h.now().UTC(),
	}
	statusCode := http.StatusOK
	for _, c := range checks {
		if c.Status != StatusHealthy {
			response.Status = StatusUnhealthy
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	handlers.RespondWithJSON(w, statusCode, response)
}

func (h *Handler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return unhealthy("database connection is nil")
	}
	if err := h.db.PingContext(ctx); err != nil {
		return unhealthy("database connection failed: " + err.Error())
	}
	return healthy("database is accessible")
}

func (h *Handler) checkQueue() Check {
	if h.queue == nil {
		return unhealthy("queue connection is nil")
	}
	if err := h.queue.Ping(); err != nil {
		return unhealthy("queue connection failed: " + err.Error())
	}
	return healthy("queue is accessible")
}

// checkEngine renders a fixed probe through the clinic namespace.
func (h *Handler) checkEngine() Check {
	if h.engine == nil {
		return unhealthy("template engine is nil")
	}
	name := "Probe"
	result := h.engine.Render("{clinic.name}", &templating.Context{Clinic: &templating.Clinic{Name: &name}})
	if !result.Success || result.Message != name {
		return unhealthy("template engine probe failed")
	}
	return healthy("template engine is rendering")
}
