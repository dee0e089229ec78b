package security

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nosql-catalog/internal/db"
	"nosql-catalog/internal/db/repository"
	"nosql-catalog/internal/domain"
	"nosql-catalog/internal/testutil"
)

var errTest = errors.New("test error")

type stubIssuer struct {
	subject string
	err     error
}

func (s *stubIssuer) Issue(subject string) (string, error) {
	s.subject = subject
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + subject, nil
}

func newTestAuthService(users domain.UserRepository, tokens TokenIssuer) *AuthService {
	s := NewAuthService(users, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.cost = bcrypt.MinCost
	return s
}

func TestAuthService_Register(t *testing.T) {
	t.Run("hashes_password", func(t *testing.T) {
		var stored *domain.User
		repo := &testutil.MockUserRepo{
			CreateFn: func(_ context.Context, u *domain.User) (*domain.User, error) {
				stored = u
				out := *u
				out.ID = 1
				return &out, nil
			},
		}
		svc := newTestAuthService(repo, &stubIssuer{})

		u, err := svc.Register(context.Background(), "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		require.NotNil(t, stored)
		assert.Equal(t, "alice@example.com", stored.Name)
		assert.NotEqual(t, "s3cret", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
	})

	t.Run("requires_both_fields", func(t *testing.T) {
		svc := newTestAuthService(&testutil.MockUserRepo{}, &stubIssuer{})

		for _, c := range [][2]string{{"", "pw"}, {"a@b.c", ""}, {"", ""}} {
			_, err := svc.Register(context.Background(), c[0], c[1])
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "Email and password are required", err.Error())
		}
	})

	t.Run("password_too_long", func(t *testing.T) {
		svc := newTestAuthService(&testutil.MockUserRepo{}, &stubIssuer{})

		_, err := svc.Register(context.Background(), "a@b.c", strings.Repeat("x", 73))
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		repo := &testutil.MockUserRepo{
			CreateFn: func(_ context.Context, u *domain.User) (*domain.User, error) {
				return nil, domain.ErrConflict("user %q already exists", u.Name)
			},
		}
		svc := newTestAuthService(repo, &stubIssuer{})

		_, err := svc.Register(context.Background(), "alice@example.com", "pw")
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &testutil.MockUserRepo{
		GetByNameFn: func(_ context.Context, name string) (*domain.User, error) {
			switch name {
			case "alice@example.com":
				return &domain.User{ID: 1, Name: name, PasswordHash: string(hash)}, nil
			case "broken@example.com":
				return nil, errTest
			}
			return nil, domain.ErrNotFound("user %q not found", name)
		},
	}

	tests := []struct {
		name      string
		email     string
		password  string
		wantToken string
		wantErr   interface{}
	}{
		{name: "success", email: "alice@example.com", password: "s3cret", wantToken: "token-for-alice@example.com"},
		{name: "wrong_password", email: "alice@example.com", password: "nope", wantErr: &domain.UnauthorizedError{}},
		{name: "unknown_user", email: "bob@example.com", password: "s3cret", wantErr: &domain.UnauthorizedError{}},
		{name: "missing_email", password: "s3cret", wantErr: &domain.ValidationError{}},
		{name: "missing_password", email: "alice@example.com", wantErr: &domain.ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(repo, &stubIssuer{})

			tok, err := svc.Login(context.Background(), tt.email, tt.password)
			switch want := tt.wantErr.(type) {
			case *domain.UnauthorizedError:
				require.ErrorAs(t, err, &want)
				assert.Equal(t, "Invalid email or password", err.Error())
			case *domain.ValidationError:
				require.ErrorAs(t, err, &want)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, tok)
			}
		})
	}

	t.Run("store_error_is_not_unauthorized", func(t *testing.T) {
		svc := newTestAuthService(repo, &stubIssuer{})

		_, err := svc.Login(context.Background(), "broken@example.com", "pw")
		require.ErrorIs(t, err, errTest)
		var unauthorized *domain.UnauthorizedError
		assert.NotErrorAs(t, err, &unauthorized)
	})

	t.Run("issuer_error", func(t *testing.T) {
		svc := newTestAuthService(repo, &stubIssuer{err: errTest})

		_, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
		require.ErrorIs(t, err, errTest)
	})
}

func TestAuthService_SQLite(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	issuer := &stubIssuer{}
	svc := newTestAuthService(repository.NewUserRepo(writeDB), issuer)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dana@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dana@example.com", "other")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	tok, err := svc.Login(ctx, "dana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "token-for-dana@example.com", tok)
	assert.Equal(t, "dana@example.com", issuer.subject)

	_, err = svc.Login(ctx, "dana@example.com", "other")
	var unauthorized *domain.UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
}
