package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/tokenstore"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi/farmapitest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSession(t *testing.T, store tokenstore.Store) (*Session, *farmapitest.Fake) {
	t.Helper()
	if store == nil {
		store = tokenstore.NewMemoryStore()
	}
	fake := farmapitest.New()
	s, err := New(fake, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s, fake
}

func token(t *testing.T, store tokenstore.Store, key tokenstore.Key) string {
	t.Helper()
	value, err := store.Get(key)
	require.NoError(t, err)
	return value
}

func TestNewStartsAnonymousWithoutToken(t *testing.T) {
	s, _ := newSession(t, nil)

	assert.Equal(t, StateAnonymous, s.State())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestNewWithStoredTokenIsPending(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyAuthToken, "persisted"))

	s, _ := newSession(t, store)

	assert.Equal(t, StatePendingValidation, s.State())
	assert.False(t, s.IsAuthenticated())
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, tokenstore.NewMemoryStore(), nil)
	assert.Error(t, err)
}

func TestLoginStoresTokensAndUser(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, _ := newSession(t, store)

	user, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "farmer@example.com", user.Email)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "access-farmer@example.com", token(t, store, tokenstore.KeyAuthToken))
	assert.Equal(t, "refresh-farmer@example.com", token(t, store, tokenstore.KeyRefreshToken))
}

func TestLoginAcceptsLegacyTokenShape(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	fake.AuthResult = &models.AuthResponse{User: &models.User{ID: 9, Email: "a@b.c"}, Token: "legacy"}

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	assert.Equal(t, "legacy", token(t, store, tokenstore.KeyAuthToken))
	assert.Empty(t, token(t, store, tokenstore.KeyRefreshToken))
}

func TestFailedLoginLeavesStoreUntouched(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyRefreshToken, "old-refresh"))
	s, fake := newSession(t, store)

	backendErr := farmapitest.Status(http.StatusBadRequest, "Invalid credentials")
	fake.Fail("Login", backendErr)

	user, err := s.Login(context.Background(), "farmer@example.com", "wrong")
	require.Error(t, err)

	assert.Nil(t, user)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Same(t, backendErr, err)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, token(t, store, tokenstore.KeyAuthToken))
	assert.Equal(t, "old-refresh", token(t, store, tokenstore.KeyRefreshToken))
}

func TestLoginWithoutTokenFails(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	fake.AuthResult = &models.AuthResponse{User: &models.User{ID: 1}}

	_, err := s.Login(context.Background(), "a@b.c", "pw")

	assert.ErrorIs(t, err, farmapi.ErrMissingToken)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, token(t, store, tokenstore.KeyAuthToken))
}

func TestRegisterAuthenticates(t *testing.T) {
	s, fake := newSession(t, nil)

	user, err := s.Register(context.Background(), models.RegisterRequest{
		Email:     "new@example.com",
		FirstName: "Awa",
		LastName:  "Diallo",
		Password:  "pw",
	})
	require.NoError(t, err)

	assert.Equal(t, "Awa Diallo", user.FullName())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, 1, fake.CallCount("Register"))
}

func TestLogoutClearsEvenWhenBackendUnreachable(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	fake.Fail("Logout", farmapitest.Unreachable())

	require.NoError(t, s.Logout(context.Background()))

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, token(t, store, tokenstore.KeyAuthToken))
	assert.Empty(t, token(t, store, tokenstore.KeyRefreshToken))
	assert.Equal(t, 1, fake.CallCount("Logout"))
}

func TestLogoutWithoutTokenSkipsBackend(t *testing.T) {
	s, fake := newSession(t, nil)

	require.NoError(t, s.Logout(context.Background()))

	assert.Zero(t, fake.CallCount("Logout"))
}

func TestValidateConfirmsStoredToken(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyAuthToken, "persisted"))
	s, fake := newSession(t, store)
	fake.Me = &models.User{ID: 4, Email: "me@example.com"}

	require.NoError(t, s.Validate(context.Background()))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int64(4), s.User().ID)
}

func TestValidateRejectedTokenExpiresSession(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyAuthToken, "stale"))
	s, fake := newSession(t, store)
	fake.FailAlways("Profile", farmapitest.Unauthorized())

	err := s.Validate(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, token(t, store, tokenstore.KeyAuthToken))
	assert.Zero(t, fake.CallCount("Refresh"))
}

func TestValidateForbiddenTokenExpiresSession(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyAuthToken, "revoked"))
	require.NoError(t, store.Set(tokenstore.KeyRefreshToken, "refresh"))
	s, fake := newSession(t, store)
	fake.FailAlways("Profile", farmapitest.Status(http.StatusForbidden, "Invalid token."))

	err := s.Validate(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorContains(t, err, "Invalid token.")
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, token(t, store, tokenstore.KeyAuthToken))
	assert.Empty(t, token(t, store, tokenstore.KeyRefreshToken))
	assert.Zero(t, fake.CallCount("Refresh"))
}

func TestValidateNetworkFailureKeepsPending(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyAuthToken, "persisted"))
	s, fake := newSession(t, store)
	fake.Fail("Profile", farmapitest.Unreachable())

	err := s.Validate(context.Background())

	assert.True(t, farmapi.IsNetwork(err))
	assert.Equal(t, StatePendingValidation, s.State())
	assert.Equal(t, "persisted", token(t, store, tokenstore.KeyAuthToken))
}

func TestValidateAnonymous(t *testing.T) {
	s, _ := newSession(t, nil)

	assert.ErrorIs(t, s.Validate(context.Background()), ErrNotAuthenticated)
}

func TestCallWithoutTokenIsNotAuthenticated(t *testing.T) {
	s, fake := newSession(t, nil)

	_, err := Call(context.Background(), s, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Farm], error) {
		return c.ListFarms(ctx)
	})

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, fake.CallCount("ListFarms"))
}

func TestCallRefreshesOnceAndRetries(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	fake.Farms = []models.Farm{{ID: 1, Name: "Kindia", TotalCapacity: 10}}
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	fake.Fail("ListFarms", farmapitest.Unauthorized())

	farms, err := Call(context.Background(), s, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Farm], error) {
		return c.ListFarms(ctx)
	})
	require.NoError(t, err)

	assert.Len(t, farms.Results, 1)
	assert.Equal(t, 1, fake.CallCount("Refresh"))
	assert.Equal(t, 2, fake.CallCount("ListFarms"))
	assert.Equal(t, "refreshed-refresh-farmer@example.com", token(t, store, tokenstore.KeyAuthToken))
	assert.Equal(t, "refresh-farmer@example.com", token(t, store, tokenstore.KeyRefreshToken))
	assert.True(t, s.IsAuthenticated())
}

func TestCallExpiresWhenRefreshRejected(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	fake.FailAlways("ListFarms", farmapitest.Unauthorized())
	fake.Fail("Refresh", farmapitest.Status(http.StatusUnauthorized, "Token is blacklisted"))

	err = s.Do(context.Background(), func(ctx context.Context, c farmapi.Client) error {
		_, err := c.ListFarms(ctx)
		return err
	})

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, farmapi.IsUnauthorized(err))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, token(t, store, tokenstore.KeyAuthToken))
	assert.Equal(t, 1, fake.CallCount("ListFarms"))
}

func TestCallExpiresWhenRetryStillUnauthorized(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	fake.FailAlways("DashboardStats", farmapitest.Unauthorized())

	_, err = Call(context.Background(), s, func(ctx context.Context, c farmapi.Client) (*models.DashboardStats, error) {
		return c.DashboardStats(ctx)
	})

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, fake.CallCount("Refresh"))
	assert.Equal(t, 2, fake.CallCount("DashboardStats"))
	assert.Equal(t, StateAnonymous, s.State())
}

func TestCallWithoutRefreshTokenExpires(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(tokenstore.KeyAuthToken, "only-access"))
	s, fake := newSession(t, store)
	fake.Fail("ListOrders", farmapitest.Unauthorized())

	_, err := Call(context.Background(), s, func(ctx context.Context, c farmapi.Client) (*models.Page[models.ChickOrder], error) {
		return c.ListOrders(ctx)
	})

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, fake.CallCount("Refresh"))
}

func TestCallRefreshNetworkFailureKeepsSession(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	fake.Fail("ListSales", farmapitest.Unauthorized())
	fake.Fail("Refresh", farmapitest.Unreachable())

	_, err = Call(context.Background(), s, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Sale], error) {
		return c.ListSales(ctx)
	})

	assert.True(t, farmapi.IsNetwork(err))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "access-farmer@example.com", token(t, store, tokenstore.KeyAuthToken))
}

func TestCallPassesOtherErrorsThrough(t *testing.T) {
	s, fake := newSession(t, nil)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	forbidden := farmapitest.Status(http.StatusForbidden, "You do not have permission to perform this action.")
	fake.Fail("ListCosts", forbidden)

	_, err = Call(context.Background(), s, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Cost], error) {
		return c.ListCosts(ctx)
	})

	assert.Same(t, forbidden, err)
	assert.Zero(t, fake.CallCount("Refresh"))
	assert.True(t, s.IsAuthenticated())
}

func TestConcurrentUnauthorizedCallsRefreshOnce(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	s, fake := newSession(t, store)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	const workers = 8
	stale := token(t, store, tokenstore.KeyAuthToken)
	listFlocks := func(ctx context.Context, c farmapi.Client) (*models.Page[models.Flock], error) {
		current, err := store.Get(tokenstore.KeyAuthToken)
		if err != nil {
			return nil, err
		}
		if current == stale {
			return nil, farmapitest.Unauthorized()
		}
		return c.ListFlocks(ctx, 0)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Call(context.Background(), s, listFlocks)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, fake.CallCount("Refresh"))
}

func TestSnapshot(t *testing.T) {
	s, _ := newSession(t, nil)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)

	snap.User.Email = "changed"
	assert.Equal(t, "farmer@example.com", s.User().Email)
}

func TestReloginFailureKeepsCurrentUser(t *testing.T) {
	s, fake := newSession(t, nil)
	_, err := s.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	fake.Fail("Login", errors.New("boom"))
	_, err = s.Login(context.Background(), "other@example.com", "pw")
	require.Error(t, err)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "farmer@example.com", s.User().Email)
}
