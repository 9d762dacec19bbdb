package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpis/accountd/internal/common"
	"github.com/mkarpis/accountd/internal/dbx"
	"github.com/mkarpis/accountd/internal/server/auth"
	"github.com/mkarpis/accountd/internal/server/models"
	"github.com/mkarpis/accountd/internal/server/password"
	"github.com/mkarpis/accountd/internal/server/repositories/users"
)

// fakeRepoManager hands out the same repository regardless of the DBTX, so
// service logic can run against the in-memory store.
type fakeRepoManager struct {
	repo users.Repository
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.repo }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func newTestService(t *testing.T, db *sql.DB) (*AccountService, *users.InMemoryRepository, *auth.Issuer) {
	t.Helper()
	repo := users.NewInMemoryRepository()
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour)
	svc := NewAccountService(db, &fakeRepoManager{repo: repo}, password.NewBcryptHasher(), issuer)
	return svc, repo, issuer
}

func TestCreate_ThenAuthenticate(t *testing.T) {
	svc, _, issuer := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	assert.Equal(t, "a@x.com", created.User.Email)
	assert.NotEmpty(t, created.User.ID)
	assert.Empty(t, created.User.PasswordHash, "hash must be withheld")

	// the token's subject is the created record's id
	subject, err := issuer.Verify(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, subject)

	authed, err := svc.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, authed.User.ID)
	assert.NotEmpty(t, authed.Token)
	assert.Empty(t, authed.User.PasswordHash)
}

func TestCreate_PasswordMismatch_NoWrite(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a@x.com", "secret123", "different")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = repo.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound, "failed create must not persist a record")
}

func TestCreate_BlankArguments(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Create(context.Background(), "", "secret123", "secret123")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = svc.Create(context.Background(), "a@x.com", "", "")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "a@x.com", "secret123", "secret123")
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Authenticate(context.Background(), "ghost@x.com", "whatever")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVerifyToken_ReturnsSubjectUser(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)

	user, err := svc.VerifyToken(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestVerifyToken_Tampered(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.VerifyToken(context.Background(), "tampered.token.value")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyToken_Expired(t *testing.T) {
	repo := users.NewInMemoryRepository()
	expired := auth.NewIssuer([]byte("test-secret"), -1*time.Minute)
	svc := NewAccountService(nil, &fakeRepoManager{repo: repo}, password.NewBcryptHasher(), expired)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)

	_, err = svc.VerifyToken(ctx, created.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyToken_SubjectDeleted(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.User.ID))

	_, err = svc.VerifyToken(ctx, created.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func strptr(s string) *string { return &s }
func i32ptr(n int32) *int32   { return &n }

func TestUpdate_PartialFieldsRetainOthers(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)
	id := created.User.ID

	_, err = svc.Update(ctx, id, UpdateParams{
		FirstName:    strptr("Ada"),
		LastName:     strptr("Lovelace"),
		Organization: strptr("Analytical Engines"),
		BadgeNumber:  i32ptr(7),
	})
	require.NoError(t, err)

	// only firstName supplied: everything else keeps its prior value
	got, err := svc.Update(ctx, id, UpdateParams{FirstName: strptr("Augusta")})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "Analytical Engines", got.Organization)
	assert.Equal(t, int32(7), got.BadgeNumber)
}

func TestUpdate_FalsyValuesLeaveFieldsUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)
	id := created.User.ID

	_, err = svc.Update(ctx, id, UpdateParams{LastName: strptr("Lovelace"), BadgeNumber: i32ptr(7)})
	require.NoError(t, err)

	// empty string and zero badge do not clear the stored values
	got, err := svc.Update(ctx, id, UpdateParams{LastName: strptr(""), BadgeNumber: i32ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, int32(7), got.BadgeNumber)
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateParams{FirstName: strptr("Ada")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRead_WithholdsHash(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)

	got, err := svc.Read(ctx, created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Empty(t, got.PasswordHash)
}

func TestRead_UnknownID(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_ReturnsSnapshotAndRemoves(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc, _, _ := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, "a@x.com", "secret123", "secret123")
	require.NoError(t, err)
	id := created.User.ID

	_, err = svc.Update(ctx, id, UpdateParams{FirstName: strptr("Ada"), BadgeNumber: i32ptr(7)})
	require.NoError(t, err)

	snapshot, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, snapshot.ID)
	assert.Equal(t, "Ada", snapshot.FirstName)
	assert.Equal(t, int32(7), snapshot.BadgeNumber)
	assert.Empty(t, snapshot.PasswordHash)

	_, err = svc.Read(ctx, id)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_UnknownID_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc, _, _ := newTestService(t, db)

	_, err = svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorsAreTerminal_StoreFailurePassesThrough(t *testing.T) {
	storeErr := errors.New("db error: connection refused")
	svc := NewAccountService(nil, &fakeRepoManager{repo: &failingRepo{err: storeErr}},
		password.NewBcryptHasher(), auth.NewIssuer([]byte("k"), time.Hour))

	_, err := svc.Create(context.Background(), "a@x.com", "s", "s")
	assert.ErrorIs(t, err, storeErr)
}

// failingRepo returns the same error from every call.
type failingRepo struct {
	err error
}

func (f *failingRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.err
}
func (f *failingRepo) GetByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f *failingRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f *failingRepo) Update(context.Context, *models.User) (*models.User, error) {
	return nil, f.err
}
func (f *failingRepo) Delete(context.Context, string) error {
	return f.err
}
