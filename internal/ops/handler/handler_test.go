package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"leadgate/internal/jwttoken"
	"leadgate/pkg/secrets"
	"leadgate/pkg/testutil"
)

type OpsTokenSuite struct {
	suite.Suite
	tokens *jwttoken.Service
	router chi.Router
}

func TestOpsTokenSuite(t *testing.T) {
	suite.Run(t, new(OpsTokenSuite))
}

func (s *OpsTokenSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.tokens = jwttoken.NewService("test-signing-key", "leadgate")

	hash, err := secrets.Hash("super-secret")
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(s.tokens, hash, logger).Register(s.router)
}

func (s *OpsTokenSuite) TestValidCredentialMintsToken() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/ops/token", map[string]string{
		"credential": "super-secret",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[tokenResponse](s.T(), rr)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(3600, resp.ExpiresIn)

	claims, err := s.tokens.ValidateToken(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(jwttoken.RoleOps, claims.Role)
}

func (s *OpsTokenSuite) TestWrongCredentialRejected() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/ops/token", map[string]string{
		"credential": "wrong",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *OpsTokenSuite) TestEmptyCredentialRejected() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/ops/token", map[string]string{})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *OpsTokenSuite) TestUnreadableBodyRejected() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/v1/ops/token", "{broken")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}
