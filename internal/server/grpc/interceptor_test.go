package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingLogger struct {
	logging.Nop
	msgs []string
	args [][]any
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) {
	l.msgs = append(l.msgs, msg)
	l.args = append(l.args, args)
}

func (l *recordingLogger) With(...any) logging.Logger { return l }

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("", log, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	require.Equal(t, []string{"grpc call"}, log.msgs)
	assert.Equal(t, []any{"method", "/grpc.health.v1.Health/Check", "code", "OK"}, log.args[0][:4])
}

func TestLoggingInterceptor_KeepsError(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("", log, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/x/Y"}

	_, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, "Unavailable", log.args[0][3])
}
