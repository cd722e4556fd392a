package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/shopcart/internal/platform/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

func Test_NewHTTPServer(t *testing.T) {
	// given
	cfg := HTTPConfig{Port: 8081, MaxHeaderBytes: 1024, ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, IdleTimeout: 3 * time.Second, ReadHeader: 4 * time.Second}

	// when
	srv := NewHTTPServer(cfg, http.NotFoundHandler())

	// then
	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 1024, srv.MaxHeaderBytes)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.Equal(t, 4*time.Second, srv.ReadHeaderTimeout)
}

func Test_NewChiRouter_InjectsRequestID(t *testing.T) {
	// given
	mux := NewChiRouter("test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	var reqID string
	mux.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		reqID, _ = web.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()

	// when
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, reqID)
}

func Test_NewGRPCServer_Health(t *testing.T) {
	// given
	hs := health.NewServer()
	srv := NewGRPCServer(slog.New(slog.NewTextHandler(io.Discard, nil)), true, HealthRegistration(hs))
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// when
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})

	// then
	require.NoError(t, err)
	assert.True(t, proto.Equal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, resp))
	_, ok := srv.GetServiceInfo()["grpc.reflection.v1.ServerReflection"]
	assert.True(t, ok, "reflection should be registered")
}

func Test_NewGRPCServer_RecoversPanics(t *testing.T) {
	// given
	handler := recoveryHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	// when
	err := handler(context.Background(), "boom")

	// then
	assert.Equal(t, codes.Internal, status.Code(err))
}
