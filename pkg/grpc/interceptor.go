package grpc

import (
	"context"
	"strings"

	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// skipAuth reports whether fullMethod is served without credentials.
func skipAuth(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/grpc.reflection.") ||
		strings.HasPrefix(fullMethod, "/grpc.health.")
}

type authenticator struct {
	provider repo.IdentityProvider
	users    repo.UserRepo
}

// authenticate resolves the bearer token in the metadata to an approved user
// and returns a context carrying it.
func (a *authenticator) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization header")
	}
	scheme, token, found := strings.Cut(values[0], " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, status.Error(codes.Unauthenticated, "invalid authorization format")
	}

	identity, err := a.provider.Verify(ctx, token)
	if err != nil {
		logger.Errorf(ctx, "gRPC auth: token validation failed: %v", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	user, err := a.users.GetUserByUID(ctx, identity.UID)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "user not registered")
	}
	if !user.IsApproved {
		return nil, status.Error(codes.PermissionDenied, "Account pending approval. Please contact administrator.")
	}
	return auth.WithUser(auth.WithIdentity(ctx, identity), user), nil
}

func (a *authenticator) unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if skipAuth(info.FullMethod) {
			return handler(ctx, req)
		}
		newCtx, err := a.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

func (a *authenticator) stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if skipAuth(info.FullMethod) {
			return handler(srv, ss)
		}
		newCtx, err := a.authenticate(ss.Context())
		if err != nil {
			return err
		}
		return handler(srv, &wrappedStream{ServerStream: ss, ctx: newCtx})
	}
}

type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
