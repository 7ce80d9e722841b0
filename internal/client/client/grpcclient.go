package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophprofile/internal/authpb"
	"github.com/dmitrijs2005/gophprofile/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Tokens is the pair returned by Login.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Identity is the answer of WhoAmI.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// publicMethods never carry the access token and never trigger a refresh.
var publicMethods = map[string]bool{
	authpb.RegisterMethod: true,
	authpb.LoginMethod:    true,
	authpb.RefreshMethod:  true,
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authpb.AuthServiceClient

	mu     sync.Mutex
	tokens Tokens
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationMetadataKey, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func isExpired(err error) bool {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		return false
	}
	return strings.Contains(st.Message(), common.ErrTokenExpired.Error())
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tokens := s.Tokens()
	err := invoker(withAccessToken(ctx, tokens.AccessToken), method, req, reply, cc, opts...)

	if err == nil || !isExpired(err) || tokens.RefreshToken == "" {
		return err
	}

	access, rerr := s.refresh(ctx, tokens.RefreshToken)
	if rerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = authpb.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) setAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens.AccessToken = token
}

func credentials(email, password string) map[string]string {
	return map[string]string{authpb.FieldEmail: email, authpb.FieldPassword: password}
}

// Register returns the confirmation message of the server.
func (s *GRPCClient) Register(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.Register(ctx, authpb.NewMessage(credentials(email, password)))
	if err != nil {
		return "", s.mapError(err)
	}
	return authpb.String(resp, authpb.FieldMsg), nil
}

// Login stores and returns the issued token pair.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (Tokens, error) {
	resp, err := s.client.Login(ctx, authpb.NewMessage(credentials(email, password)))
	if err != nil {
		return Tokens{}, s.mapError(err)
	}

	t := Tokens{
		AccessToken:  authpb.String(resp, authpb.FieldAccessToken),
		RefreshToken: authpb.String(resp, authpb.FieldRefreshToken),
	}
	s.SetTokens(t)
	return t, nil
}

// Refresh exchanges the stored refresh token for a new access token.
// The refresh token itself is kept.
func (s *GRPCClient) Refresh(ctx context.Context) (string, error) {
	refreshToken := s.Tokens().RefreshToken
	if refreshToken == "" {
		return "", ErrNotLoggedIn
	}
	access, err := s.refresh(ctx, refreshToken)
	if err != nil {
		return "", s.mapError(err)
	}
	return access, nil
}

func (s *GRPCClient) refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := s.client.Refresh(ctx, authpb.NewMessage(map[string]string{authpb.FieldToken: refreshToken}))
	if err != nil {
		return "", err
	}
	access := authpb.String(resp, authpb.FieldToken)
	s.setAccessToken(access)
	return access, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*Identity, error) {
	if s.Tokens().AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	resp, err := s.client.WhoAmI(ctx, authpb.NewMessage(nil))
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Identity{
		ID:    authpb.String(resp, authpb.FieldID),
		Email: authpb.String(resp, authpb.FieldEmail),
	}, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
