package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophprofile/internal/authpb"
	"github.com/dmitrijs2005/gophprofile/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func credentials(req *structpb.Struct) (string, string, error) {
	email := authpb.String(req, authpb.FieldEmail)
	password := authpb.String(req, authpb.FieldPassword)

	if email == "" || password == "" {
		return "", "", status.Error(codes.InvalidArgument, "email and password are required")
	}
	if !common.IsValidEmail(email) {
		return "", "", status.Error(codes.InvalidArgument, "value is not a valid email address")
	}
	return email, password, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password, err := credentials(req)
	if err != nil {
		return nil, err
	}

	user, err := s.auth.Register(ctx, email, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return authpb.NewMessage(map[string]string{authpb.FieldMsg: "User created successfully"}), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password, err := credentials(req)
	if err != nil {
		return nil, err
	}

	tokens, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return authpb.NewMessage(map[string]string{
		authpb.FieldAccessToken:  tokens.AccessToken,
		authpb.FieldRefreshToken: tokens.RefreshToken,
	}), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := authpb.String(req, authpb.FieldToken)
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	access, err := s.auth.Refresh(ctx, token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return authpb.NewMessage(map[string]string{authpb.FieldToken: access}), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, ok := CurrentUserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}

	return authpb.NewMessage(map[string]string{
		authpb.FieldID:    user.ID,
		authpb.FieldEmail: user.Email,
	}), nil
}
