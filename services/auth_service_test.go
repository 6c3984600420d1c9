package services

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"conversa/auth"
	"conversa/errors"
	"conversa/repositories"
)

func newAuthService(t *testing.T) (IAuthService, *auth.TokenIssuer) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens := auth.NewTokenIssuer("test_secret_for_auth_service", time.Hour)
	return NewAuthService(repositories.NewUserRepository(db), tokens), tokens
}

const strongPassword = "Str0ng&Secret!Passw0rd"

func TestAuthService_Register_Then_Login(t *testing.T) {
	req := require.New(t)
	service, tokens := newAuthService(t)

	// Registration issues a token carrying the username
	token, err := service.Register("alice", strongPassword)
	req.NoError(err)
	claims, err := tokens.Validate(string(token))
	req.NoError(err)
	req.Equal("alice", claims.Username)

	// So does a later login
	token, err = service.Login("alice", strongPassword)
	req.NoError(err)
	claims, err = tokens.Validate(string(token))
	req.NoError(err)
	req.Equal("alice", claims.Username)
}

func TestAuthService_Register_Weak_Password(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, err := service.Register("alice", "short")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_Register_Taken_Username(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, err := service.Register("alice", strongPassword)
	req.NoError(err)

	_, err = service.Register("alice", strongPassword)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Login_Wrong_Password(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, err := service.Register("alice", strongPassword)
	req.NoError(err)

	_, err = service.Login("alice", "Wrong&Passw0rd!Here")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestAuthService_Login_Unknown_User(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, err := service.Login("ghost", strongPassword)
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
