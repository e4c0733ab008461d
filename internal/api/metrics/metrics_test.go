package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

func TestNew_RegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.AccountsCreated.WithLabelValues(SourceSignup).Inc()
	m.AccountsCreated.WithLabelValues(SourceSignup).Inc()
	m.LoginAttempts.WithLabelValues("success").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			values[mf.GetName()] += metric.GetCounter().GetValue()
		}
	}
	if values["accounts_created_total"] != 2 {
		t.Fatalf("expected 2 signups, got %v", values["accounts_created_total"])
	}
	if values["accounts_login_attempts_total"] != 1 {
		t.Fatalf("expected 1 login attempt, got %v", values["accounts_login_attempts_total"])
	}
}

func TestLoginResult(t *testing.T) {
	cases := map[string]error{
		"success":             nil,
		"invalid_credentials": domain.ErrInvalidCredentials,
		"not_found":           fmt.Errorf("lookup: %w", domain.ErrAccountNotFound),
		"invalid_request":     domain.NewValidationError("login is required"),
		"error":               errors.New("connection reset"),
	}
	for want, err := range cases {
		if got := LoginResult(err); got != want {
			t.Errorf("LoginResult(%v): want %q, got %q", err, want, got)
		}
	}
}

func TestUploadResult(t *testing.T) {
	if got := UploadResult(nil); got != "stored" {
		t.Errorf("want stored, got %q", got)
	}
	if got := UploadResult(domain.ErrAccountExists); got != "rejected" {
		t.Errorf("want rejected, got %q", got)
	}
	if got := UploadResult(errors.New("disk full")); got != "error" {
		t.Errorf("want error, got %q", got)
	}
}
