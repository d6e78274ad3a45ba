package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/auth"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/middleware"
)

const testSecret = "test-secret"

func token(t *testing.T, outletID uuid.UUID, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, uuid.New(), outletID, role, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

// outletRouter mounts handler behind Authenticate + RequireOutlet the way the
// API router does.
func outletRouter(inner http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	r.Route("/outlets/{oid}", func(r chi.Router) {
		r.Use(middleware.RequireOutlet)
		r.Get("/test", inner)
	})
	return r
}

func TestAuthenticate_ValidToken(t *testing.T) {
	outletID := uuid.New()
	tok := token(t, outletID, enum.UserRoleCashier)

	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.OutletID != outletID {
			t.Errorf("outlet ID: got %v, want %v", claims.OutletID, outletID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"invalid token", "Bearer invalid-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireOutlet(t *testing.T) {
	home, other := uuid.New(), uuid.New()
	tests := []struct {
		name   string
		role   string
		path   uuid.UUID
		status int
	}{
		{"own outlet", enum.UserRoleCashier, home, http.StatusOK},
		{"other outlet", enum.UserRoleCashier, other, http.StatusForbidden},
		{"kiosk other outlet", enum.UserRoleKiosk, other, http.StatusForbidden},
		{"owner any outlet", enum.UserRoleOwner, other, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := outletRouter(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/outlets/"+tt.path.String()+"/test", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, home, tt.role))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestRequireOutlet_InvalidOutletID(t *testing.T) {
	router := outletRouter(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/outlets/not-a-uuid/test", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, uuid.New(), enum.UserRoleCashier))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRequireRole(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Authenticate(testSecret)(middleware.RequireRole(enum.UserRoleOwner, enum.UserRoleManager)(inner))

	for role, want := range map[string]int{
		enum.UserRoleCashier: http.StatusForbidden,
		enum.UserRoleKiosk:   http.StatusForbidden,
		enum.UserRoleManager: http.StatusOK,
	} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, uuid.New(), role))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != want {
			t.Errorf("%s: status got %d, want %d", role, rr.Code, want)
		}
	}
}
