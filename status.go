package schoolstore

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-arrower/schoolstore/repository"
)

const (
	metricPath = "/metrics"
	statusPath = "/status"
)

// StatusHandler serves the prometheus metrics and the system status.
func (c *Container) StatusHandler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricPath, promhttp.HandlerFor(
		c.Registry,
		promhttp.HandlerOpts{ //nolint:exhaustruct
			EnableOpenMetrics: true, // to enable Examplars in the export format
		},
	))

	mux.HandleFunc(statusPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second) //nolint:mnd // keep the endpoint responsive
		defer cancel()

		status := c.SystemStatus(ctx)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if status.Status != statusOnline {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(status)
	})

	return mux
}

const (
	statusOnline   = "online"
	statusDegraded = "degraded"
)

type SystemStatus struct {
	Status          string      `json:"status"`
	Time            time.Time   `json:"time"`
	Uptime          string      `json:"uptime"`
	GitHash         string      `json:"gitHash"`
	ApplicationName string      `json:"applicationName"`
	InstanceName    string      `json:"instanceName"`
	Environment     Environment `json:"environment"`

	Web     HTTP          `json:"web"`
	Storage StorageStatus `json:"storage"`
}

type StorageStatus struct {
	Storage
	Status string                `json:"status"`
	Slots  []repository.SlotInfo `json:"slots,omitempty"`
}

// SystemStatus reports if the store can be reached and which slots it holds.
func (c *Container) SystemStatus(ctx context.Context) SystemStatus {
	status := SystemStatus{
		Status:          statusOnline,
		Time:            time.Now(),
		Uptime:          time.Since(c.startedAt).Round(time.Second).String(),
		GitHash:         gitHash(),
		ApplicationName: c.Config.ApplicationName,
		InstanceName:    c.Config.InstanceName,
		Environment:     c.Config.Environment,
		Web:             c.Config.HTTP,
		Storage:         StorageStatus{Storage: c.Config.Storage, Status: statusOnline},
	}

	if pinger, ok := c.Store.(repository.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			status.Status = statusDegraded
			status.Storage.Status = "err: " + err.Error()

			return status
		}
	}

	if lister, ok := c.Store.(repository.Lister); ok {
		slots, err := lister.Slots(ctx)
		if err != nil {
			status.Status = statusDegraded
			status.Storage.Status = "err: " + err.Error()

			return status
		}

		status.Storage.Slots = slots
	}

	return status
}
