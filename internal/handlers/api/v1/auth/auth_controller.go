package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"fanpulse/internal/config"
	"fanpulse/internal/contextutils"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthController handles registration, login and Google sign-in
type AuthController struct {
	auth    services.AuthService
	oauth   *oauth2.Config
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuthController creates a new auth controller. The Google flow stays
// disabled when no OAuth credentials are configured.
func NewAuthController(auth services.AuthService, cfg *config.AuthConfig, builder *response.Builder, logger *zap.Logger) *AuthController {
	var oauthCfg *oauth2.Config
	if cfg.GoogleAuthEnabled() {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &AuthController{
		auth:    auth,
		oauth:   oauthCfg,
		builder: builder,
		logger:  logger,
	}
}

// Register handles account creation
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		c.builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
		return
	}

	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.auth.Register(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, result)
}

// Login handles password authentication
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		c.builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
		return
	}

	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.auth.Login(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}

// Me returns the authenticated user's profile
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	user, err := c.auth.GetUser(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// GoogleLogin redirects to Google's consent screen
func (c *AuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if c.oauth == nil {
		c.builder.WriteError(w, r, services.NewBusinessError("google sign-in is not configured", "GOOGLE_AUTH_DISABLED"))
		return
	}

	state, err := randomState()
	if err != nil {
		c.logger.Error("failed to generate oauth state", zap.Error(err))
		c.builder.WriteError(w, r, services.NewInternalError("failed to start sign-in"))
		return
	}

	// The state round-trips through a short-lived cookie for CSRF protection
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, c.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback exchanges the authorization code and signs the user in
func (c *AuthController) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if c.oauth == nil {
		c.builder.WriteError(w, r, services.NewBusinessError("google sign-in is not configured", "GOOGLE_AUTH_DISABLED"))
		return
	}

	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("invalid oauth state"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		c.builder.WriteError(w, r, services.NewValidationError("missing authorization code", nil))
		return
	}

	profile, err := c.fetchGoogleProfile(r.Context(), code)
	if err != nil {
		c.logger.Warn("google profile fetch failed", zap.Error(err))
		c.builder.WriteError(w, r, services.NewUnauthorizedError("google sign-in failed"))
		return
	}

	result, err := c.auth.LoginWithGoogle(r.Context(), profile.Email, profile.Name)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}

type googleProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (c *AuthController) fetchGoogleProfile(ctx context.Context, code string) (*googleProfile, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	resp, err := c.oauth.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
