package health

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "direct-chat.Relay"

// Worker serves the standard gRPC health protocol. Both the overall status
// and ServiceName are SERVING while Run is active and switch to
// NOT_SERVING as soon as shutdown starts.
type Worker struct {
	log      *slog.Logger
	listener net.Listener
	server   *grpc.Server
	health   *health.Server
}

func NewWorker(log *slog.Logger, listener net.Listener) *Worker {
	hs := health.NewServer()
	gs := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	return &Worker{log: log, listener: listener, server: gs, health: hs}
}

func (w *Worker) Run(ctx context.Context) error {
	w.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	w.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	stop := context.AfterFunc(ctx, func() {
		w.health.Shutdown()
		w.server.GracefulStop()
	})
	defer stop()

	w.log.Info("Serving gRPC health", "address", w.listener.Addr().String())
	if err := w.server.Serve(w.listener); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Check answers like a remote health client would.
func (w *Worker) Check(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	resp, err := w.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
