package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name       string
		write      func(rec *statusRecorder)
		wantStatus int
		wantSize   int
	}{
		{
			name:       "default status on write",
			write:      func(rec *statusRecorder) { _, _ = rec.Write([]byte("Success")) },
			wantStatus: http.StatusOK,
			wantSize:   len("Success"),
		},
		{
			name: "first header wins",
			write: func(rec *statusRecorder) {
				rec.WriteHeader(http.StatusCreated)
				rec.WriteHeader(http.StatusBadRequest)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "size accumulates",
			write: func(rec *statusRecorder) {
				rec.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = rec.Write([]byte("[]"))
				_, _ = rec.Write([]byte("Your Total is $0"))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantSize:   len("[]Your Total is $0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			rec := record(w)

			// Act
			tt.write(rec)

			// Assert
			if rec.status != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.status, tt.wantStatus)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("written status = %d, want %d", w.Code, tt.wantStatus)
			}
			if rec.size != tt.wantSize {
				t.Errorf("size = %d, want %d", rec.size, tt.wantSize)
			}
		})
	}
}

func TestRecord_ReusesOuterRecorder(t *testing.T) {
	outer := record(httptest.NewRecorder())

	if inner := record(outer); inner != outer {
		t.Error("record() wrapped an existing recorder again")
	}
}

func TestStatusRecorder_HijackNotSupported(t *testing.T) {
	rec := record(httptest.NewRecorder())

	_, _, err := rec.Hijack()

	if !errors.Is(err, http.ErrNotSupported) {
		t.Errorf("Hijack() error = %v, want ErrNotSupported", err)
	}
}

func TestChain(t *testing.T) {
	// Arrange
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := Chain(mark("first"), mark("second"), mark("third"))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
	)

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/all-items", nil))

	// Assert
	if got := strings.Join(order, ","); got != "first,second,third,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestChain_Empty(t *testing.T) {
	called := false
	handler := Chain()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("handler was not called")
	}
}

func TestRouteLabel(t *testing.T) {
	// Arrange
	var got string
	router := mux.NewRouter()
	router.HandleFunc("/checkout-total", func(_ http.ResponseWriter, r *http.Request) {
		got = routeLabel(r)
	})

	// Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/checkout-total", nil))
	unmatched := routeLabel(httptest.NewRequest(http.MethodGet, "/random/1234", nil))

	// Assert
	if got != "/checkout-total" {
		t.Errorf("matched route = %q, want /checkout-total", got)
	}
	if unmatched != unmatchedRoute {
		t.Errorf("unmatched route = %q, want %q", unmatched, unmatchedRoute)
	}
}
