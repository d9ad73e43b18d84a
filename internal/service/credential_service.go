package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/entity"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/internal/pkg/secretbox"
	"drive-copilot-be/internal/repository/contract"
	"drive-copilot-be/internal/repository/specification"
	"drive-copilot-be/internal/repository/unitofwork"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/drive"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// GoogleProfile is the identity returned by the userinfo endpoint.
type GoogleProfile struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// ICredentialService owns the stored OAuth credential of each user. It is also
// the drive.Connector used by the assistant.
type ICredentialService interface {
	drive.Connector
	SaveFromLogin(ctx context.Context, profile GoogleProfile, token *oauth2.Token) (*entity.UserCredential, error)
	GetCredential(ctx context.Context, userID string) (*entity.UserCredential, error)
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

type credentialService struct {
	uowFactory unitofwork.RepositoryFactory
	box        *secretbox.Box
	oauthConf  *oauth2.Config
	driveConf  drive.ClientConfig
	clientOpts []option.ClientOption
	logger     logger.ILogger
}

func NewCredentialService(
	uowFactory unitofwork.RepositoryFactory,
	box *secretbox.Box,
	oauthConf *oauth2.Config,
	driveConf drive.ClientConfig,
	log logger.ILogger,
	clientOpts ...option.ClientOption,
) ICredentialService {
	return &credentialService{
		uowFactory: uowFactory,
		box:        box,
		oauthConf:  oauthConf,
		driveConf:  driveConf,
		clientOpts: clientOpts,
		logger:     log,
	}
}

func (s *credentialService) SaveFromLogin(ctx context.Context, profile GoogleProfile, token *oauth2.Token) (*entity.UserCredential, error) {
	if profile.Subject == "" {
		return nil, apperror.New(apperror.KindAuthentication, "Google did not return an account id.")
	}
	if token == nil || token.AccessToken == "" {
		return nil, apperror.New(apperror.KindAuthentication, "Google did not return an access token.")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()
	repo := uow.UserCredentialRepository()

	existing, err := repo.FindOne(ctx, specification.ByGoogleSubject{Subject: profile.Subject})
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}

	cred := existing
	if cred == nil {
		cred = &entity.UserCredential{
			Id:            uuid.New(),
			GoogleSubject: profile.Subject,
		}
	}

	cred.Email = profile.Email
	cred.FullName = profile.Name
	cred.AvatarURL = profile.AvatarURL
	cred.AccessToken = token.AccessToken
	cred.TokenType = token.Type()
	cred.Expiry = token.Expiry
	if scopes, ok := token.Extra("scope").(string); ok && scopes != "" {
		cred.Scopes = strings.Fields(scopes)
	}

	// Google only returns a refresh token on first consent; keep the stored
	// one otherwise.
	if token.RefreshToken != "" {
		sealed, err := s.box.Seal(token.RefreshToken, cred.Id.String())
		if err != nil {
			return nil, fmt.Errorf("seal refresh token: %w", err)
		}
		cred.RefreshTokenCipher = sealed
	}

	if existing == nil {
		err = repo.Create(ctx, cred)
	} else {
		err = repo.Update(ctx, cred)
	}
	if err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit credential: %w", err)
	}

	s.logger.Info(constant.ModuleCredential, "Credential stored", map[string]interface{}{
		"user_id":           cred.Id.String(),
		"new_user":          existing == nil,
		"has_refresh_token": cred.RefreshTokenCipher != "",
	})
	return cred, nil
}

func (s *credentialService) GetCredential(ctx context.Context, userID string) (*entity.UserCredential, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.ErrAuthenticationRequired
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).UserCredentialRepository()
	cred, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindCollaborator, "I could not load your account.", err)
	}
	if cred == nil {
		return nil, apperror.ErrAuthenticationRequired
	}
	return cred, nil
}

func (s *credentialService) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	cred, err := s.GetCredential(ctx, userID)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   cred.TokenType,
		Expiry:      cred.Expiry,
	}
	if cred.RefreshTokenCipher != "" {
		refresh, err := s.box.Open(cred.RefreshTokenCipher, cred.Id.String())
		if err != nil {
			s.logger.Error(constant.ModuleCredential, "Stored refresh token unreadable", map[string]interface{}{
				"user_id": userID,
				"error":   err,
			})
			return nil, apperror.Wrap(apperror.KindAuthentication, apperror.ErrAuthenticationRequired.Message, err)
		}
		token.RefreshToken = refresh
	}

	// The token source outlives the request that created it.
	base := s.oauthConf.TokenSource(context.WithoutCancel(ctx), token)
	return &persistingTokenSource{
		base:   base,
		last:   token.AccessToken,
		userID: cred.Id,
		repo:   s.uowFactory.NewUnitOfWork(ctx).UserCredentialRepository(),
		logger: s.logger,
	}, nil
}

func (s *credentialService) Connect(ctx context.Context, userID string) (drive.Workspace, error) {
	ts, err := s.TokenSource(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.clientOpts...)
	client, err := drive.NewClient(ctx, s.driveConf, opts...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindCollaborator, "I could not connect to Google Drive.", err)
	}
	return client, nil
}

// persistingTokenSource writes refreshed access tokens back to the database
// and reports refresh failures as authentication errors.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	userID uuid.UUID
	repo   contract.UserCredentialRepository
	logger logger.ILogger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		p.logger.Warn(constant.ModuleCredential, "Token refresh failed", map[string]interface{}{
			"user_id": p.userID.String(),
			"error":   err.Error(),
		})
		return nil, apperror.Wrap(apperror.KindAuthentication, apperror.ErrAuthenticationRequired.Message, err)
	}

	p.mu.Lock()
	changed := token.AccessToken != p.last
	p.last = token.AccessToken
	p.mu.Unlock()

	if changed {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.repo.UpdateToken(ctx, p.userID, token.AccessToken, token.Type(), token.Expiry); err != nil {
			p.logger.Warn(constant.ModuleCredential, "Failed to persist refreshed token", map[string]interface{}{
				"user_id": p.userID.String(),
				"error":   err.Error(),
			})
		}
	}
	return token, nil
}
