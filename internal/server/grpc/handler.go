package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) ProcessConsent(ctx context.Context, req *ProcessConsentRequest) (*models.ConsentOutcome, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	out, err := s.consent.Process(ctx, req.Token, req.Agrees, req.CustomRestrictions)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil
}

func (s *GRPCServer) GetRestrictions(ctx context.Context, _ *GetRestrictionsRequest) (*RestrictionsResponse, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	b, err := s.restrictions.Get(ctx, claims.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &RestrictionsResponse{Restrictions: b}, nil
}

// GetAccountStatus reports the caller's purchasing switch; it reads as off
// until a parent has answered a consent request.
func (s *GRPCServer) GetAccountStatus(ctx context.Context, _ *GetAccountStatusRequest) (*models.AccountStatus, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	st, err := s.restrictions.AccountStatus(ctx, claims.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if st == nil {
		st = &models.AccountStatus{UserID: claims.UserID}
	}
	return st, nil
}

func (s *GRPCServer) OverrideRestrictions(ctx context.Context, req *OverrideRestrictionsRequest) (*RestrictionsResponse, error) {
	if req.UserID == "" || req.Restrictions == nil {
		return nil, status.Error(codes.InvalidArgument, "userId and restrictions are required")
	}

	b, err := s.restrictions.Override(ctx, req.UserID, req.Restrictions)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if claims, ok := claimsFromContext(ctx); ok {
		s.logger.Info(ctx, "restrictions overridden", "user_id", req.UserID, "by", claims.UserID)
	}
	return &RestrictionsResponse{Restrictions: b}, nil
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrTokenInvalid), errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrTokenUsed):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		s.logger.Error(ctx, "grpc call failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
