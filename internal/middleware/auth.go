package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/pkg/authenticator"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/router"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// Authenticate resolves the acting account. The bot gateway authenticates
// with its shared key and names the messenger user it acts for; direct
// callers present a bearer token.
func Authenticate(engine authenticator.TokenEngine[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		cfg := xcontext.Configs(ctx).Auth

		if key := r.Header.Get("X-Gateway-Key"); key != "" {
			if cfg.GatewayActorKey == "" || key != cfg.GatewayActorKey {
				return nil, errorx.New(errorx.Unauthenticated, "Invalid gateway key")
			}

			actor := r.Header.Get("X-Actor-ID")
			if actor == "" {
				return nil, errorx.New(errorx.Unauthenticated, "Missing actor id")
			}

			return xcontext.WithRequestUserID(ctx, actor), nil
		}

		authorization := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(authorization, "Bearer ")
		if !found {
			return nil, errorx.New(errorx.Unauthenticated, "Missing credentials")
		}

		accessToken, err := engine.Verify(token)
		if err != nil {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid token")
		}

		return xcontext.WithRequestUserID(ctx, accessToken.ID), nil
	}
}

// AdminOnly allows only accounts listed in the admin actors config.
func AdminOnly() router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		userID := xcontext.RequestUserID(ctx)
		if userID == "" || !slices.Contains(xcontext.Configs(ctx).AdminActors, userID) {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return ctx, nil
	}
}
