package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpSignIn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := app.signUp(t, "Alice@Example.com")
	assert.NotEmpty(t, token)

	var email string
	require.NoError(t, app.DB.QueryRow(`SELECT email FROM users`).Scan(&email))
	assert.Equal(t, "alice@example.com", email)

	// Duplicate account
	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "secret1"})
	resp, err := app.Server.Client().Post(app.Server.URL+"/auth/signup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong password
	body, _ = json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong-pass"})
	resp, err = app.Server.Client().Post(app.Server.URL+"/auth/signin", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct password
	body, _ = json.Marshal(map[string]string{"email": "alice@example.com", "password": "secret1"})
	resp, err = app.Server.Client().Post(app.Server.URL+"/auth/signin", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.request(t, http.MethodGet, "/api/me", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "alice@example.com", me["email"])
}

func TestGoogleLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	for i := 0; i < 2; i++ {
		resp, err := app.Server.Client().PostForm(app.Server.URL+"/oauth/google", url.Values{"credential": {"valid_token"}})
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var count int
	require.NoError(t, app.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE email = 'test@example.com'`).Scan(&count))
	assert.Equal(t, 1, count, "second login reuses the account")

	resp, err := app.Server.Client().PostForm(app.Server.URL+"/oauth/google", url.Values{"credential": {"bad_token"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
