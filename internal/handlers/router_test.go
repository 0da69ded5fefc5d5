package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/contactbook/internal/cache"
	"github.com/nkiryanov/contactbook/internal/logger"
	"github.com/nkiryanov/contactbook/internal/ratelimit"
	"github.com/nkiryanov/contactbook/internal/repository/postgres"
	"github.com/nkiryanov/contactbook/internal/service/auth"
	"github.com/nkiryanov/contactbook/internal/service/auth/revocation"
	"github.com/nkiryanov/contactbook/internal/service/auth/tokencodec"
	"github.com/nkiryanov/contactbook/internal/service/contacts"
	"github.com/nkiryanov/contactbook/internal/testutil"
)

type testEnv struct {
	URL      string
	Auth     *auth.AuthService
	Contacts *contacts.ContactsService
}

// Run http server with the full production router over the given tx
// Rate limit is set high enough to never fire in these tests
func startTestServer(t *testing.T, tx pgx.Tx) testEnv {
	t.Helper()

	storage := postgres.NewStorage(tx)
	_, client := testutil.StartMiniredis(t)
	store := cache.NewRedis(client)

	codec, err := tokencodec.New(tokencodec.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		EmailSecret:   "test-email-secret",
	})
	require.NoError(t, err, "token codec should be created without errors")

	revoked, err := revocation.New(store)
	require.NoError(t, err, "revocation store starting error", err)

	authService, err := auth.NewService(auth.Config{}, codec, revoked, storage.User())
	require.NoError(t, err, "auth service starting error", err)

	contactsService, err := contacts.NewService(contacts.Config{}, storage.Contact(), cache.New(store, nil))
	require.NoError(t, err, "contacts service starting error", err)

	limiter, err := ratelimit.New(ratelimit.Config{Max: 10000}, store, nil)
	require.NoError(t, err, "limiter starting error", err)

	srv := httptest.NewServer(NewRouter(authService, contactsService, limiter, logger.NewNoOpLogger()))
	t.Cleanup(srv.Close)

	return testEnv{URL: srv.URL, Auth: authService, Contacts: contactsService}
}

// Register, verify and login a user, returning an access token ready to use
func loginUser(t *testing.T, env testEnv, username string) (accessToken string) {
	t.Helper()

	_, verify, err := env.Auth.Register(t.Context(), username, username+"@example.com", "StrongEnoughPassword")
	require.NoError(t, err)
	_, err = env.Auth.VerifyEmail(t.Context(), verify.Value)
	require.NoError(t, err)

	pair, err := env.Auth.Login(t.Context(), username, "StrongEnoughPassword")
	require.NoError(t, err)

	return pair.Access.Value
}

// Send request with optional bearer token, return response and read body
func doRequest(t *testing.T, method string, url string, token string, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(respBody)
}
