package grpcauth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophsession/internal/client/transport"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeSession struct {
	mu    sync.Mutex
	token string
	next  string
	err   error
	calls int
}

func (f *fakeSession) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Refresh(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.token = f.next
	return f.token, nil
}

func authOf(ctx context.Context) string {
	md, _ := metadata.FromOutgoingContext(ctx)
	if v := md.Get(common.AuthorizationMetadataKey); len(v) > 0 {
		return v[0]
	}
	return ""
}

func TestInterceptor_RefreshesOnUnauthenticatedAndRetries(t *testing.T) {
	fs := &fakeSession{token: "A1", next: "A2"}
	icpt := UnaryClientInterceptor(transport.NewCoordinator(fs))

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		seen = append(seen, authOf(ctx))
		if authOf(ctx) == "Bearer A1" {
			return status.Error(codes.Unauthenticated, "token expired")
		}
		return nil
	}

	err := icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer A1", "Bearer A2"}, seen)
	assert.Equal(t, 1, fs.calls)
}

func TestInterceptor_SecondUnauthenticatedIsTerminal(t *testing.T) {
	fs := &fakeSession{token: "A1", next: "A2"}
	icpt := UnaryClientInterceptor(transport.NewCoordinator(fs))

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		return status.Error(codes.Unauthenticated, "nope")
	}

	err := icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, fs.calls)
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	fs := &fakeSession{token: "A1", next: "A2"}
	icpt := UnaryClientInterceptor(transport.NewCoordinator(fs))

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.PermissionDenied, "forbidden")
	}

	err := icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Zero(t, fs.calls)
}

func TestInterceptor_RefreshFailurePropagates(t *testing.T) {
	fs := &fakeSession{token: "A1", err: errors.New("down")}
	icpt := UnaryClientInterceptor(transport.NewCoordinator(fs))

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		return status.Error(codes.Unauthenticated, "expired")
	}

	err := icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.ErrorIs(t, err, common.ErrRefreshFailed)
	assert.Equal(t, 1, calls)
}

func TestWithAccessToken_PreservesOtherMetadata(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "42", "authorization", "Bearer old")

	ctx = withAccessToken(ctx, "new")
	md, _ := metadata.FromOutgoingContext(ctx)
	assert.Equal(t, []string{"42"}, md.Get("x-request-id"))
	assert.Equal(t, []string{"Bearer new"}, md.Get("authorization"))

	ctx = withAccessToken(ctx, "")
	md, _ = metadata.FromOutgoingContext(ctx)
	assert.Empty(t, md.Get("authorization"))
}
