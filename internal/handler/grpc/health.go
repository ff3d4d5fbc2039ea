package grpc

import (
	"context"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/TomasB/geodb/internal/geo"
	geodbv1 "github.com/TomasB/geodb/pkg/geodb/v1"
)

// NewHealthServer returns a health server reporting NOT_SERVING for the
// server and GeoDBService.
func NewHealthServer() *health.Server {
	hs := health.NewServer()
	setStatus(hs, healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

// ServeHealth switches hs to SERVING once gate opens.  It returns after the
// switch or when ctx is done.
func ServeHealth(ctx context.Context, gate *geo.Gate, hs *health.Server) {
	select {
	case <-gate.Done():
		setStatus(hs, healthpb.HealthCheckResponse_SERVING)
	case <-ctx.Done():
	}
}

func setStatus(hs *health.Server, st healthpb.HealthCheckResponse_ServingStatus) {
	hs.SetServingStatus("", st)
	hs.SetServingStatus(geodbv1.ServiceName, st)
}
