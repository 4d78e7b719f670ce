package jwttoken_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	jwttoken "lekha/internal/jwt_token"
	dErrors "lekha/pkg/domain-errors"
)

// ============================================================
// JWT Service Suite
// ============================================================

type JWTServiceSuite struct {
	suite.Suite

	svc *jwttoken.JWTService
}

func TestJWTServiceSuite(t *testing.T) {
	suite.Run(t, new(JWTServiceSuite))
}

func (s *JWTServiceSuite) SetupTest() {
	s.svc = jwttoken.NewJWTService("test-signing-key", "lekha", "lekha-api")
}

func (s *JWTServiceSuite) TestRoundTrip() {
	userID := uuid.New()
	firmID := uuid.New()

	token, err := s.svc.GenerateAccessToken(userID, firmID, time.Hour)
	s.Require().NoError(err)
	s.Require().NotEmpty(token)

	claims, err := s.svc.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(userID.String(), claims.UserID)
	s.Equal(firmID.String(), claims.FirmID)
	s.Equal("lekha", claims.Issuer)
}

func (s *JWTServiceSuite) TestExpiredToken() {
	token, err := s.svc.GenerateAccessToken(uuid.New(), uuid.New(), -time.Minute)
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *JWTServiceSuite) TestWrongSigningKey() {
	other := jwttoken.NewJWTService("other-key", "lekha", "lekha-api")
	token, err := other.GenerateAccessToken(uuid.New(), uuid.New(), time.Hour)
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *JWTServiceSuite) TestGarbageToken() {
	_, err := s.svc.ValidateToken("not-a-jwt")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
