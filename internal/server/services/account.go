// Package services contains the server-side business logic. This file
// implements AccountService, which owns the account lifecycle: registration,
// credential verification, token validation, and profile read/update/delete.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkarpis/accountd/internal/common"
	"github.com/mkarpis/accountd/internal/dbx"
	"github.com/mkarpis/accountd/internal/server/models"
	"github.com/mkarpis/accountd/internal/server/repositories/repomanager"
)

// PasswordHasher is the one-way credential primitive the service depends on.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer produces and validates signed bearer tokens carrying a subject
// id and expiry.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
	Verify(token string) (string, error)
}

// AuthResult bundles a freshly issued token with the authenticated user.
// User always has the password hash withheld.
type AuthResult struct {
	Token string
	User  *models.User
}

// UpdateParams carries the optional profile fields of an update. A nil
// pointer means "leave unchanged"; so do an empty string and a zero badge
// number, matching the falsy-field semantics of the source system.
type UpdateParams struct {
	FirstName    *string
	LastName     *string
	Organization *string
	BadgeNumber  *int32
}

// AccountService provides account lifecycle operations. It holds no state
// between requests; the record store is the only shared resource.
type AccountService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAccountService constructs an AccountService from its collaborators.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) *AccountService {
	return &AccountService{
		db:     db,
		rm:     m,
		hasher: hasher,
		tokens: tokens,
	}
}

// Create registers a new account and signs the caller in.
//
// Failure kinds: common.ErrorInvalidInput when the passwords do not match or
// required arguments are blank, common.ErrorConflict when the email is
// already taken. The duplicate check and the insert are two separate store
// round trips, so two concurrent creates with the same email can both pass
// the check; that race is accepted rather than enforced with a constraint.
// The token is issued only after the insert succeeds.
func (s *AccountService) Create(ctx context.Context, email, pwd, confirmPwd string) (*AuthResult, error) {

	if email == "" || pwd == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorInvalidInput)
	}
	if pwd != confirmPwd {
		return nil, fmt.Errorf("%w: passwords do not match", common.ErrorInvalidInput)
	}

	repo := s.rm.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%w: user with email %s", common.ErrorConflict, email)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(pwd)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{Token: token, User: user.Redacted()}, nil
}

// Authenticate verifies the email/password pair and issues a fresh token.
// Unknown email yields common.ErrorNotFound; a wrong password yields
// common.ErrorUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, email, pwd string) (*AuthResult, error) {

	repo := s.rm.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user with email %s", common.ErrorNotFound, email)
		}
		return nil, err
	}

	if !s.hasher.Verify(pwd, user.PasswordHash) {
		return nil, fmt.Errorf("%w: password incorrect", common.ErrorUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{Token: token, User: user.Redacted()}, nil
}

// VerifyToken validates a bearer token and returns the user it was issued
// for. Invalid, malformed or expired tokens yield common.ErrorUnauthorized;
// a valid token whose subject no longer exists yields common.ErrorNotFound.
// No new token is issued.
func (s *AccountService) VerifyToken(ctx context.Context, token string) (*models.User, error) {

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}

	user, err := s.rm.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user.Redacted(), nil
}

// Update overwrites the profile fields supplied in params and leaves the
// rest untouched, via an explicit read-modify-write against the store.
func (s *AccountService) Update(ctx context.Context, id string, params UpdateParams) (*models.User, error) {

	repo := s.rm.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.FirstName != nil && *params.FirstName != "" {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil && *params.LastName != "" {
		user.LastName = *params.LastName
	}
	if params.Organization != nil && *params.Organization != "" {
		user.Organization = *params.Organization
	}
	if params.BadgeNumber != nil && *params.BadgeNumber != 0 {
		user.BadgeNumber = *params.BadgeNumber
	}

	saved, err := repo.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error saving user: %w", err)
	}

	return saved.Redacted(), nil
}

// Read returns the account with the given id.
func (s *AccountService) Read(ctx context.Context, id string) (*models.User, error) {

	user, err := s.rm.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user.Redacted(), nil
}

// Delete removes the account and returns its state as it existed immediately
// before deletion. Snapshot read and delete run in one transaction so the
// returned record cannot be a concurrent writer's version.
func (s *AccountService) Delete(ctx context.Context, id string) (*models.User, error) {

	var snapshot *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}

		snapshot = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot.Redacted(), nil
}
