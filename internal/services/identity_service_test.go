package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertionParams(claimedID string) url.Values {
	return url.Values{
		"openid.ns":             {openIDNamespace},
		"openid.mode":           {"id_res"},
		"openid.op_endpoint":    {"https://steamcommunity.com/openid/login"},
		"openid.claimed_id":     {claimedID},
		"openid.identity":       {claimedID},
		"openid.return_to":      {"https://store.example/verify"},
		"openid.response_nonce": {"2026-10-19T12:00:00Zabc"},
		"openid.assoc_handle":   {"1234567890"},
		"openid.signed":         {"signed,op_endpoint,claimed_id,identity,return_to,response_nonce,assoc_handle"},
		"openid.sig":            {"W0u5DRbtHE1GG0ZKXjerUZDUGmc="},
	}
}

func steamStub(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()
	var received url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received = r.PostForm
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

func TestIdentityService_Verify(t *testing.T) {
	ctx := context.Background()
	claimed := "https://steamcommunity.com/openid/id/" + testExternalID

	t.Run("valid assertion yields steam id", func(t *testing.T) {
		srv, received := steamStub(t, http.StatusOK, "ns:http://specs.openid.net/auth/2.0\nis_valid:true\n")
		service := NewIdentityService(SteamConfig{OpenIDURL: srv.URL, Timeout: time.Second})

		steamID, err := service.Verify(ctx, assertionParams(claimed))
		require.NoError(t, err)
		assert.Equal(t, testExternalID, steamID)
		assert.Equal(t, "check_authentication", received.Get("openid.mode"))
		assert.Equal(t, "W0u5DRbtHE1GG0ZKXjerUZDUGmc=", received.Get("openid.sig"))
	})

	t.Run("provider rejects assertion", func(t *testing.T) {
		srv, _ := steamStub(t, http.StatusOK, "ns:http://specs.openid.net/auth/2.0\nis_valid:false\n")
		service := NewIdentityService(SteamConfig{OpenIDURL: srv.URL, Timeout: time.Second})

		_, err := service.Verify(ctx, assertionParams(claimed))
		assert.ErrorIs(t, err, ErrInvalidAssertion)
	})

	t.Run("missing claimed id never reaches provider", func(t *testing.T) {
		srv, received := steamStub(t, http.StatusOK, "is_valid:true")
		service := NewIdentityService(SteamConfig{OpenIDURL: srv.URL, Timeout: time.Second})

		params := assertionParams(claimed)
		params.Del("openid.claimed_id")
		_, err := service.Verify(ctx, params)
		assert.ErrorIs(t, err, ErrInvalidAssertion)
		assert.Nil(t, *received)
	})

	t.Run("foreign claimed id is malformed", func(t *testing.T) {
		srv, _ := steamStub(t, http.StatusOK, "is_valid:true")
		service := NewIdentityService(SteamConfig{OpenIDURL: srv.URL, Timeout: time.Second})

		_, err := service.Verify(ctx, assertionParams("https://evil.example/openid/id/1"))
		assert.ErrorIs(t, err, ErrMalformedIdentity)
	})

	t.Run("provider outage", func(t *testing.T) {
		srv, _ := steamStub(t, http.StatusServiceUnavailable, "")
		service := NewIdentityService(SteamConfig{OpenIDURL: srv.URL, Timeout: time.Second})

		_, err := service.Verify(ctx, assertionParams(claimed))
		assert.ErrorIs(t, err, ErrIdentityUnavailable)
		assert.NotErrorIs(t, err, ErrProviderUnavailable)
		assert.Equal(t, http.StatusBadGateway, StatusFor(err))
	})

	t.Run("provider unreachable", func(t *testing.T) {
		service := NewIdentityService(SteamConfig{OpenIDURL: "http://127.0.0.1:1", Timeout: time.Second})

		_, err := service.Verify(ctx, assertionParams(claimed))
		assert.ErrorIs(t, err, ErrIdentityUnavailable)
		assert.Contains(t, err.Error(), "identity provider unavailable")
	})
}

func TestIdentityService_LoginURL(t *testing.T) {
	service := NewIdentityService(SteamConfig{OpenIDURL: "https://steamcommunity.com/openid/login"})

	loginURL, err := url.Parse(service.LoginURL("https://store.example/verify", "https://store.example"))
	require.NoError(t, err)
	q := loginURL.Query()
	assert.Equal(t, "checkid_setup", q.Get("openid.mode"))
	assert.Equal(t, "https://store.example/verify", q.Get("openid.return_to"))
	assert.Equal(t, openIDIdentifierAny, q.Get("openid.claimed_id"))
}

func TestIdentityService_FetchProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("no api key", func(t *testing.T) {
		service := NewIdentityService(SteamConfig{})
		profile, err := service.FetchProfile(ctx, testExternalID)
		assert.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("player summary", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ISteamUser/GetPlayerSummaries/v2/", r.URL.Path)
			assert.Equal(t, testExternalID, r.URL.Query().Get("steamids"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"response":{"players":[{"steamid":"76561197960287930","personaname":"Rex","avatarfull":"https://avatars.example/rex.jpg"}]}}`))
		}))
		defer srv.Close()

		service := NewIdentityService(SteamConfig{APIKey: "key", APIURL: srv.URL + "/", Timeout: time.Second})
		profile, err := service.FetchProfile(ctx, testExternalID)
		require.NoError(t, err)
		assert.Equal(t, "Rex", profile.PersonaName)
		assert.Equal(t, "https://avatars.example/rex.jpg", profile.AvatarFull)
	})

	t.Run("unreachable web api does not leak the key", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		service := NewIdentityService(SteamConfig{APIKey: "SECRETKEY123", APIURL: srv.URL, Timeout: time.Second})
		profile, err := service.FetchProfile(ctx, testExternalID)
		assert.Nil(t, profile)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIdentityUnavailable)
		assert.NotContains(t, err.Error(), "SECRETKEY123")
		assert.NotContains(t, err.Error(), "key=")
	})
}
