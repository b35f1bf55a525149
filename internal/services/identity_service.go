package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	openIDNamespace      = "http://specs.openid.net/auth/2.0"
	openIDIdentifierAny  = "http://specs.openid.net/auth/2.0/identifier_select"
	openIDValidityMarker = "is_valid:true"
	maxProviderBody      = 64 << 10
)

var claimedIDPattern = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d+)/?$`)

// SteamConfig configures the OpenID endpoint and the optional Web API lookup.
type SteamConfig struct {
	OpenIDURL string
	APIKey    string
	APIURL    string
	Timeout   time.Duration
}

// SteamProfile is the public part of a Steam account.
type SteamProfile struct {
	PersonaName string `json:"personaname"`
	AvatarFull  string `json:"avatarfull"`
}

// IdentityService turns a Steam OpenID assertion into a verified SteamID64.
type IdentityService struct {
	client    *http.Client
	openIDURL string
	apiKey    string
	apiURL    string
}

func NewIdentityService(cfg SteamConfig) *IdentityService {
	return &IdentityService{
		client:    &http.Client{Timeout: cfg.Timeout},
		openIDURL: cfg.OpenIDURL,
		apiKey:    cfg.APIKey,
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
	}
}

// LoginURL is where the browser is sent to sign in with Steam.
func (s *IdentityService) LoginURL(returnTo, realm string) string {
	params := url.Values{
		"openid.ns":         {openIDNamespace},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {returnTo},
		"openid.realm":      {realm},
		"openid.identity":   {openIDIdentifierAny},
		"openid.claimed_id": {openIDIdentifierAny},
	}
	return s.openIDURL + "?" + params.Encode()
}

// Verify re-validates the assertion with Steam by replaying every parameter
// in check_authentication mode and returns the numeric SteamID.
func (s *IdentityService) Verify(ctx context.Context, params url.Values) (string, error) {
	claimedID := params.Get("openid.claimed_id")
	if claimedID == "" {
		return "", fmt.Errorf("%w: openid.claimed_id missing", ErrInvalidAssertion)
	}

	form := url.Values{}
	for key, values := range params {
		form[key] = append([]string(nil), values...)
	}
	form.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.openIDURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		err = transportError(err)
		log.WithError(err).Warn("[AUTH] Steam verification request failed")
		return "", fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: steam returned status %d", ErrIdentityUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return "", fmt.Errorf("%w: read verification response: %w", ErrIdentityUnavailable, err)
	}
	if !strings.Contains(string(body), openIDValidityMarker) {
		log.WithField("status", resp.StatusCode).Warn("[AUTH] Steam rejected assertion")
		return "", fmt.Errorf("%w: provider did not confirm assertion", ErrInvalidAssertion)
	}

	match := claimedIDPattern.FindStringSubmatch(claimedID)
	if match == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedIdentity, claimedID)
	}
	return match[1], nil
}

// FetchProfile looks up the persona name and avatar. It returns nil without a
// Web API key configured.
func (s *IdentityService) FetchProfile(ctx context.Context, steamID string) (*SteamProfile, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v2/?%s", s.apiURL, url.Values{
		"key":      {s.apiKey},
		"steamids": {steamID},
	}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", transportError(err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: steam web api: %w", ErrIdentityUnavailable, transportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam web api returned status %d", resp.StatusCode)
	}

	var result struct {
		Response struct {
			Players []SteamProfile `json:"players"`
		} `json:"response"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProviderBody)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode player summaries: %w", err)
	}
	if len(result.Response.Players) == 0 {
		return nil, errors.New("steam web api returned no player")
	}
	return &result.Response.Players[0], nil
}

// transportError drops the request URL from client errors. The Web API URL
// carries the API key in its query string.
func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
