package service

import (
	"context"
	"sync"
	"time"

	"drive-copilot-be/internal/entity"
	"drive-copilot-be/internal/repository/contract"
	"drive-copilot-be/internal/repository/specification"
	"drive-copilot-be/internal/repository/unitofwork"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// fakeCredentialRepo is an in-memory contract.UserCredentialRepository that
// understands the two specifications the service uses. It doubles as the
// unit-of-work factory.
type fakeCredentialRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]entity.UserCredential
	creates int
	updates int
	tokens  []string

	begins    int
	commits   int
	rollbacks int
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{rows: make(map[uuid.UUID]entity.UserCredential)}
}

func (r *fakeCredentialRepo) Create(ctx context.Context, cred *entity.UserCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	r.rows[cred.Id] = *cred
	return nil
}

func (r *fakeCredentialRepo) Update(ctx context.Context, cred *entity.UserCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.rows[cred.Id] = *cred
	return nil
}

func (r *fakeCredentialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeCredentialRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if matches(row, specs) {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeCredentialRepo) UpdateToken(ctx context.Context, id uuid.UUID, accessToken, tokenType string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.rows[id]
	row.AccessToken = accessToken
	row.TokenType = tokenType
	row.Expiry = expiry
	r.rows[id] = row
	r.tokens = append(r.tokens, accessToken)
	return nil
}

func (r *fakeCredentialRepo) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: r}
}

// fakeUnitOfWork shares the repo; it only counts transaction boundaries.
type fakeUnitOfWork struct {
	repo *fakeCredentialRepo
	open bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	u.open = true
	u.repo.begins++
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	u.open = false
	u.repo.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.open {
		return nil
	}
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	u.open = false
	u.repo.rollbacks++
	return nil
}

func (u *fakeUnitOfWork) UserCredentialRepository() contract.UserCredentialRepository {
	return u.repo
}

func (r *fakeCredentialRepo) get(id uuid.UUID) entity.UserCredential {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

func matches(row entity.UserCredential, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if row.Id != s.ID {
				return false
			}
		case specification.ByGoogleSubject:
			if row.GoogleSubject != s.Subject {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// fakeCredentials stands in for ICredentialService in OAuth tests.
type fakeCredentials struct {
	saved   []GoogleProfile
	tokens  []*oauth2.Token
	cred    *entity.UserCredential
	getErr  error
	connect func(ctx context.Context, userID string) (drive.Workspace, error)
}

func (f *fakeCredentials) SaveFromLogin(ctx context.Context, profile GoogleProfile, token *oauth2.Token) (*entity.UserCredential, error) {
	f.saved = append(f.saved, profile)
	f.tokens = append(f.tokens, token)
	if f.cred == nil {
		f.cred = &entity.UserCredential{Id: uuid.New()}
	}
	f.cred.GoogleSubject = profile.Subject
	f.cred.Email = profile.Email
	f.cred.FullName = profile.Name
	f.cred.AvatarURL = profile.AvatarURL
	return f.cred, nil
}

func (f *fakeCredentials) GetCredential(ctx context.Context, userID string) (*entity.UserCredential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cred, nil
}

func (f *fakeCredentials) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "static"}), nil
}

func (f *fakeCredentials) Connect(ctx context.Context, userID string) (drive.Workspace, error) {
	return f.connect(ctx, userID)
}

// recordingScheduler records ScheduleRebuild calls; the rest of
// IDriveIndexService is unused by the OAuth flow.
type recordingScheduler struct {
	IDriveIndexService
	mu      sync.Mutex
	userIDs []string
	reasons []string
}

func (r *recordingScheduler) ScheduleRebuild(ctx context.Context, userID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userIDs = append(r.userIDs, userID)
	r.reasons = append(r.reasons, reason)
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// treeWorkspace serves a fixed folder tree; other Workspace methods are not
// used by the index service.
type treeWorkspace struct {
	drive.Workspace
	children map[string][]drive.Item
	err      error
}

func (w *treeWorkspace) ListChildren(ctx context.Context, folderID, pageToken string) (*drive.Page, error) {
	if w.err != nil {
		return nil, w.err
	}
	return &drive.Page{Items: w.children[folderID]}, nil
}
