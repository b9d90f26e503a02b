package firebase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// IdentityClient talks to the Firebase Identity Toolkit REST API for the
// flows the Admin SDK does not cover: password sign-in and refresh-token
// exchange.
type IdentityClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewIdentityClient(apiKey string) *IdentityClient {
	return &IdentityClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithEmailPassword exchanges credentials for an ID token and a
// refresh token.
func (c *IdentityClient) SignInWithEmailPassword(email, password string) (string, string, error) {
	payload, _ := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})

	endpoint := "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword?key=" + c.apiKey
	resp, err := c.httpClient.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var result signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			return "", "", fmt.Errorf("sign in failed: %s", result.Error.Message)
		}
		return "", "", fmt.Errorf("sign in failed: status %d", resp.StatusCode)
	}

	return result.IDToken, result.RefreshToken, nil
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RefreshIDToken exchanges a refresh token for a fresh ID token.
func (c *IdentityClient) RefreshIDToken(refreshToken string) (string, string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := "https://securetoken.googleapis.com/v1/token?key=" + c.apiKey
	resp, err := c.httpClient.Post(endpoint, "application/x-www-form-urlencoded", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var result refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			return "", "", fmt.Errorf("token refresh failed: %s", result.Error.Message)
		}
		return "", "", fmt.Errorf("token refresh failed: status %d", resp.StatusCode)
	}

	return result.IDToken, result.RefreshToken, nil
}
