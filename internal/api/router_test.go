package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/99minutos/employee-registry/internal/api/middleware"
	"github.com/99minutos/employee-registry/internal/core/domain"
	"github.com/99minutos/employee-registry/internal/core/ports"
)

type routeService struct {
	ports.EmployeeService
	calls []string
}

func (s *routeService) GetAll(context.Context) ([]*domain.Employee, error) {
	s.calls = append(s.calls, "GetAll")
	return []*domain.Employee{{ID: 1, FirstName: "Ana", IsActive: true}}, nil
}

func (s *routeService) GetActive(context.Context) ([]*domain.Employee, error) {
	s.calls = append(s.calls, "GetActive")
	return []*domain.Employee{}, nil
}

func (s *routeService) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	s.calls = append(s.calls, "GetByID")
	return nil, domain.NotFound(id)
}

func (s *routeService) GetByDepartment(context.Context, string) ([]*domain.Employee, error) {
	s.calls = append(s.calls, "GetByDepartment")
	return []*domain.Employee{}, nil
}

func (s *routeService) CountByDepartment(context.Context, string) (int64, error) {
	s.calls = append(s.calls, "CountByDepartment")
	return 2, nil
}

func (s *routeService) ToggleStatus(_ context.Context, id int64) (*domain.Employee, error) {
	s.calls = append(s.calls, "ToggleStatus")
	return &domain.Employee{ID: id}, nil
}

func (s *routeService) HardDelete(context.Context, int64) error {
	s.calls = append(s.calls, "HardDelete")
	return nil
}

func (s *routeService) Create(context.Context, ports.EmployeeInput) (*domain.Employee, error) {
	s.calls = append(s.calls, "Create")
	return nil, &domain.UniqueViolationError{Field: "email", Value: "ana@x.com"}
}

func newTestRouter(svc ports.EmployeeService, deps Dependencies) http.Handler {
	deps.Service = svc
	deps.Logger = zerolog.Nop()
	reg := prometheus.NewRegistry()
	deps.Registerer = reg
	deps.Gatherer = reg
	return NewRouter(deps)
}

func TestRouter_EmployeeRoutes(t *testing.T) {
	tests := []struct {
		method   string
		path     string
		body     string
		wantCode int
		wantCall string
	}{
		{http.MethodGet, "/api/v1/employees", "", http.StatusOK, "GetAll"},
		{http.MethodGet, "/api/v1/employees/active", "", http.StatusOK, "GetActive"},
		{http.MethodGet, "/api/v1/employees/7", "", http.StatusNotFound, "GetByID"},
		{http.MethodGet, "/api/v1/employees/department/Eng", "", http.StatusOK, "GetByDepartment"},
		{http.MethodGet, "/api/v1/employees/department/Eng/count", "", http.StatusOK, "CountByDepartment"},
		{http.MethodPatch, "/api/v1/employees/3/toggle-status", "", http.StatusOK, "ToggleStatus"},
		{http.MethodDelete, "/api/v1/employees/3/permanent", "", http.StatusOK, "HardDelete"},
		{http.MethodPost, "/api/v1/employees", `{"firstName":"Ana","lastName":"Diaz","email":"ana@x.com"}`, http.StatusConflict, "Create"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc := &routeService{}
			r := newTestRouter(svc, Dependencies{})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if len(svc.calls) != 1 || svc.calls[0] != tt.wantCall {
				t.Errorf("expected single call %s, got %v", tt.wantCall, svc.calls)
			}
		})
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	r := newTestRouter(&routeService{}, Dependencies{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/employees/7", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "employee not found with id: 7" {
		t.Errorf("unexpected envelope %v", body)
	}
}

func TestRouter_OpsRoutes(t *testing.T) {
	r := newTestRouter(&routeService{}, Dependencies{})

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_CORSAndRequestID(t *testing.T) {
	r := newTestRouter(&routeService{}, Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if len(rec.Header().Get("X-Request-Id")) != 36 {
		t.Errorf("expected uuid request id, got %q", rec.Header().Get("X-Request-Id"))
	}
}

func TestRouter_RateLimit(t *testing.T) {
	l, err := middleware.NewLimiter(memory.NewStore(), "1-M")
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}
	r := newTestRouter(&routeService{}, Dependencies{Limiter: l})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}

	// Ops routes are not throttled.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected /health to bypass the limiter, got %d", rec.Code)
	}
}
