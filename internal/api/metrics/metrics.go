// Package metrics defines the custom Prometheus metrics of the accounts API.
// It is the single source of truth for metric names, labels, and help
// strings.
//
// Build a Metrics with New against the registry that /metrics serves.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

const namespace = "accounts"

// Label values for AccountsCreated.
const (
	SourceSignup  = "signup"
	SourceAddUser = "adduser"
)

type Metrics struct {
	// AccountsCreated counts newly stored accounts.
	// Label:
	//   - source: "signup" or "adduser"
	AccountsCreated *prometheus.CounterVec

	// LoginAttempts counts credential checks.
	// Label:
	//   - result: "success", "invalid_credentials", "not_found", "invalid_request" or "error"
	LoginAttempts *prometheus.CounterVec

	// ImageUploads counts profile pictures received on /adduser.
	// Label:
	//   - result: "stored", "rejected" or "error"
	ImageUploads *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AccountsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "created_total",
				Help:      "Total number of accounts created, by source.",
			},
			[]string{"source"},
		),
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		ImageUploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_uploads_total",
				Help:      "Total number of profile picture uploads, by result.",
			},
			[]string{"result"},
		),
	}
}

// LoginResult maps the outcome of a login to its label value.
func LoginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid_request"
	default:
		return "error"
	}
}

// UploadResult maps the outcome of an add-user request carrying an image.
// Requests rejected before the image was written count as "rejected".
func UploadResult(err error) string {
	switch {
	case err == nil:
		return "stored"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrAccountExists):
		return "rejected"
	default:
		return "error"
	}
}
