package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-go/internal/crypto"
	"github.com/shelfmark/shelfmark-go/internal/model"
	"github.com/shelfmark/shelfmark-go/internal/repository"
)

type resolverFunc func(ctx context.Context, id string) (*model.User, error)

func (f resolverFunc) GetByID(ctx context.Context, id string) (*model.User, error) {
	return f(ctx, id)
}

type authFixture struct {
	issuer  *crypto.TokenIssuer
	store   *repository.MemoryUserRepository
	handler http.Handler
	now     time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		store: repository.NewMemoryUserRepository(),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	issuer, err := crypto.NewTokenIssuer("test-secret", crypto.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.issuer = issuer

	require.NoError(t, f.store.Create(context.Background(), &model.User{ID: "u-1", UserName: "alice"}))

	f.handler = Authenticate(issuer, f.store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity missing from context")
		}
		w.Write([]byte(id.ID + ":" + id.UserName))
	}))
	return f
}

func (f *authFixture) do(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/user/favourites", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.issuer.Issue("u-1", "alice")
	require.NoError(t, err)

	rec := f.do("Bearer " + token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1:alice", rec.Body.String())
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.issuer.Issue("u-1", "alice")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, f.do("bearer "+token).Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newAuthFixture(t)

	valid, err := f.issuer.Issue("u-1", "alice")
	require.NoError(t, err)
	orphan, err := f.issuer.Issue("deleted-user", "ghost")
	require.NoError(t, err)
	other, err := crypto.NewTokenIssuer("other-secret")
	require.NoError(t, err)
	forged, err := other.Issue("u-1", "alice")
	require.NoError(t, err)

	tests := map[string]string{
		"missing header":  "",
		"basic scheme":    "Basic dXNlcjpwYXNz",
		"empty token":     "Bearer ",
		"no separator":    "Bearer" + valid,
		"garbage token":   "Bearer not.a.jwt",
		"wrong signature": "Bearer " + forged,
		"unknown subject": "Bearer " + orphan,
	}

	var bodies []string
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec := f.do(header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
			bodies = append(bodies, rec.Body.String())
		})
	}

	for _, b := range bodies {
		assert.Equal(t, bodies[0], b, "rejections must be indistinguishable")
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.issuer.Issue("u-1", "alice")
	require.NoError(t, err)

	f.now = f.now.Add(crypto.TokenTTL - time.Minute)
	assert.Equal(t, http.StatusOK, f.do("Bearer "+token).Code)

	f.now = f.now.Add(2 * time.Minute)
	rec := f.do("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}

func TestAuthenticate_ResolverFailure(t *testing.T) {
	issuer, err := crypto.NewTokenIssuer("test-secret")
	require.NoError(t, err)
	token, err := issuer.Issue("u-1", "alice")
	require.NoError(t, err)

	failing := resolverFunc(func(context.Context, string) (*model.User, error) {
		return nil, errors.New("connection reset")
	})
	called := false
	h := Authenticate(issuer, failing)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
}

func TestIdentityFromContext_Missing(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), model.Identity{ID: "u-9"})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-9", id.ID)
}
