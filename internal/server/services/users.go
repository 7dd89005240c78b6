// Package services contains server-side business logic. UserService handles
// registration, credential checks and access token issuance; TaskService
// handles the owner-scoped task operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type UserService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user and returns its id. The password is hashed before
// it reaches the repository.
func (s *UserService) Register(ctx context.Context, username, email, password string) (int64, error) {
	if common.Blank(username, email, password) {
		return 0, fmt.Errorf("%w: all fields required", common.ErrorValidation)
	}
	switch {
	case tooLong(username, maxUsernameLength):
		return 0, lengthError("username", maxUsernameLength)
	case tooLong(email, maxEmailLength):
		return 0, lengthError("email", maxEmailLength)
	case len(password) > maxPasswordBytes:
		return 0, fmt.Errorf("%w: password must be at most %d bytes", common.ErrorValidation, maxPasswordBytes)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, storeError("error hashing password", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash, CreatedAt: s.now()}

	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		_, err := s.repomanager.Users(conn).Create(ctx, user)
		return err
	})
	if err != nil {
		return 0, storeError("error creating user", err)
	}

	return user.ID, nil
}

// Authenticate checks username and password. An unknown user and a wrong
// password both yield common.ErrInvalidCredentials, and both pay for one hash
// comparison so they cannot be told apart by timing either.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (auth.Identity, error) {
	var user *models.User
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(conn).GetByUsername(ctx, username)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummy())
			return auth.Identity{}, common.ErrInvalidCredentials
		}
		return auth.Identity{}, storeError("error loading user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return auth.Identity{}, common.ErrInvalidCredentials
	}

	return auth.Identity{UserID: user.ID, Username: user.Username}, nil
}

// Login authenticates the user and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if common.Blank(username, password) {
		return nil, fmt.Errorf("%w: username and password required", common.ErrorValidation)
	}

	id, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(id.UserID, id.Username)
	if err != nil {
		return nil, storeError("error issuing token", err)
	}

	return &LoginResult{Token: token, Username: id.Username}, nil
}

// Profile returns the public account details of userID.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	var profile *models.Profile
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		profile, err = s.repomanager.Users(conn).GetProfile(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeError("error loading profile", err)
	}
	return profile, nil
}

// fallbackDummyHash is a well-formed bcrypt hash at the default cost. It is
// only used when the configured hasher cannot produce its own dummy.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// dummy returns a hash made with the configured cost, so a lookup miss costs
// the same as a wrong password.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("timing-equalizer")
		if err != nil || hash == "" {
			hash = fallbackDummyHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
