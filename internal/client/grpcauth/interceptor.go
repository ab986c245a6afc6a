// Package grpcauth is the gRPC counterpart of transport.AuthTransport: a unary
// client interceptor that sends the session's bearer token in metadata and
// retries a call once after an Unauthenticated status, refreshing through the
// shared Coordinator first.
package grpcauth

import (
	"context"

	"github.com/dmitrijs2005/gophsession/internal/client/transport"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationMetadataKey)
	if token != "" {
		md.Set(common.AuthorizationMetadataKey, common.BearerPrefix+token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryClientInterceptor returns an interceptor driven by c.
func UnaryClientInterceptor(c *transport.Coordinator) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		sent := c.AccessToken()
		err := invoker(withAccessToken(ctx, sent), method, req, reply, cc, opts...)
		if status.Code(err) != codes.Unauthenticated {
			return err
		}

		fresh, rerr := c.Refresh(ctx, sent)
		if rerr != nil {
			return rerr
		}

		return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
	}
}
