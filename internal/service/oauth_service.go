package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"drive-copilot-be/internal/config"
	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/dto"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/internal/pkg/serverutils"
	"drive-copilot-be/pkg/apperror"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const sessionTokenTTL = 24 * time.Hour

var ErrUnsupportedProvider = apperror.New(apperror.KindBadRequest, "Unsupported login provider.")

type IOAuthService interface {
	// GetLoginURL returns the consent URL and the state value the callback
	// must echo back.
	GetLoginURL(provider string) (url string, state string, err error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
	GetUserInfo(ctx context.Context, userID string) (*dto.UserDTO, error)
}

type oauthService struct {
	googleConf   *oauth2.Config
	jwtSecret    string
	credentials  ICredentialService
	indexes      IDriveIndexService
	logger       logger.ILogger
	userinfoOpts []option.ClientOption
}

// NewGoogleOAuthConfig requests offline access to Drive and Docs.
func NewGoogleOAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       constant.GoogleScopes,
		Endpoint:     google.Endpoint,
	}
}

func NewOAuthService(
	googleConf *oauth2.Config,
	jwtSecret string,
	credentials ICredentialService,
	indexes IDriveIndexService,
	log logger.ILogger,
	userinfoOpts ...option.ClientOption,
) IOAuthService {
	log.Info(constant.ModuleOAuth, "OAuth service initialized", map[string]interface{}{
		"redirect_url": googleConf.RedirectURL,
		"scopes":       googleConf.Scopes,
	})

	return &oauthService{
		googleConf:   googleConf,
		jwtSecret:    jwtSecret,
		credentials:  credentials,
		indexes:      indexes,
		logger:       log,
		userinfoOpts: userinfoOpts,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, string, error) {
	if provider != constant.OAuthProviderGoogle {
		return "", "", ErrUnsupportedProvider
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	// prompt=consent makes Google issue a refresh token on every login.
	url := s.googleConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return url, state, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != constant.OAuthProviderGoogle {
		return nil, ErrUnsupportedProvider
	}
	if code == "" {
		return nil, apperror.New(apperror.KindBadRequest, "Missing authorization code.")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		s.logger.Error(constant.ModuleOAuth, "Code exchange failed", map[string]interface{}{"error": err})
		return nil, apperror.Wrap(apperror.KindAuthentication, "Google login failed. Please try again.", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		s.logger.Error(constant.ModuleOAuth, "Fetching user info failed", map[string]interface{}{"error": err})
		return nil, apperror.Wrap(apperror.KindCollaborator, "Could not read your Google profile.", err)
	}

	cred, err := s.credentials.SaveFromLogin(ctx, *profile, token)
	if err != nil {
		return nil, err
	}
	userID := cred.Id.String()

	signed, err := serverutils.SignToken(s.jwtSecret, userID, cred.Email, sessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	// The first crawl runs in the background; the client polls cache-status.
	s.indexes.ScheduleRebuild(ctx, userID, constant.RebuildReasonLogin)

	s.logger.Info(constant.ModuleOAuth, "User logged in", map[string]interface{}{
		"user_id": userID,
	})

	return &dto.LoginResponse{
		AccessToken: signed,
		User:        toUserDTO(userID, cred.Email, cred.FullName, cred.AvatarURL),
	}, nil
}

func (s *oauthService) GetUserInfo(ctx context.Context, userID string) (*dto.UserDTO, error) {
	cred, err := s.credentials.GetCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := toUserDTO(cred.Id.String(), cred.Email, cred.FullName, cred.AvatarURL)
	return &user, nil
}

func (s *oauthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(s.googleConf.TokenSource(ctx, token)),
	}, s.userinfoOpts...)

	svc, err := googleoauth.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if info.Id == "" {
		return nil, errors.New("userinfo response has no id")
	}

	return &GoogleProfile{
		Subject:   info.Id,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

func toUserDTO(userID, email, name, avatar string) dto.UserDTO {
	return dto.UserDTO{
		Id:        userID,
		Email:     email,
		FullName:  name,
		AvatarURL: avatar,
	}
}
