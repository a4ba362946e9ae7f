package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/schema/schematest"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func newUser(t *testing.T, db *sqlx.DB, email string) *entity.User {
	t.Helper()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, sqlite.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	repo := sqlite.NewUserRepository(db)
	u := newUser(t, db, "a@x.com")

	dup := &entity.User{ID: uuid.NewString(), Email: "a@x.com", PasswordHash: "h", Name: "B", CreatedAt: time.Now()}
	err := repo.Create(ctx, dup)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Microsecond)

	view, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", view.Email)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = repo.GetByID(ctx, "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUserDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	u := newUser(t, db, "a@x.com")
	require.NoError(t, sqlite.NewCategoryRepository(db).CreateMany(ctx, entity.DefaultCategories(u.ID)))
	require.NoError(t, sqlite.NewTodoRepository(db).Create(ctx, u.ID, &entity.Todo{ID: "t1", Text: "x", Date: "2024-01-01"}))

	require.NoError(t, sqlite.NewUserRepository(db).Delete(ctx, u.ID))

	var n int
	require.NoError(t, db.Get(&n, `SELECT (SELECT COUNT(*) FROM categories) + (SELECT COUNT(*) FROM todos)`))
	assert.Zero(t, n)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(sqlite.NewUserRepository(db).Delete(ctx, u.ID)))
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	repo := sqlite.NewCategoryRepository(db)
	a := newUser(t, db, "a@x.com")
	b := newUser(t, db, "b@x.com")

	require.NoError(t, repo.CreateMany(ctx, entity.DefaultCategories(a.ID)))
	n, err := repo.CountByOwner(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	list, err := repo.ListByOwner(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 6)
	assert.Equal(t, "Health", list[0].Name)
	assert.Equal(t, "Work", list[5].Name)

	err = repo.Create(ctx, &entity.Category{ID: a.ID + "-work", Name: "W", Icon: "i", Color: "c", OwnerID: b.ID})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err), "ids are unique across owners")

	err = repo.Create(ctx, &entity.Category{ID: "c1", Name: "W", OwnerID: b.ID})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = repo.Update(ctx, a.ID, a.ID+"-work", entity.CategoryPatch{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = repo.Update(ctx, b.ID, a.ID+"-work", entity.CategoryPatch{Name: strp("Mine")})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	require.NoError(t, repo.Update(ctx, a.ID, a.ID+"-work", entity.CategoryPatch{Color: strp("#000000")}))
	list, err = repo.ListByOwner(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", list[5].Name)
	assert.Equal(t, "#000000", list[5].Color)

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(repo.Delete(ctx, b.ID, a.ID+"-work")))
	require.NoError(t, repo.Delete(ctx, a.ID, a.ID+"-work"))

	others, err := repo.ListByOwner(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestTodoRepositoryCreateAndList(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	repo := sqlite.NewTodoRepository(db)
	a := newUser(t, db, "a@x.com")
	b := newUser(t, db, "b@x.com")

	require.NoError(t, repo.Create(ctx, a.ID, &entity.Todo{ID: "t1", Text: "buy milk", Date: "2024-01-01"}))
	require.NoError(t, repo.Create(ctx, a.ID, &entity.Todo{ID: "t2", Text: "ship", Completed: true, Date: "2024-01-03", CategoryID: strp("work")}))
	require.NoError(t, repo.Create(ctx, b.ID, &entity.Todo{ID: "t3", Text: "other", Date: "2024-01-02"}))

	err := repo.Create(ctx, b.ID, &entity.Todo{ID: "t1", Text: "dup", Date: "2024-01-01"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	err = repo.Create(ctx, a.ID, &entity.Todo{ID: "t4", Date: "2024-01-01"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	list, err := repo.ListByOwner(ctx, a.ID, entity.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID)
	assert.True(t, list[0].Completed)
	assert.Equal(t, "work", *list[0].CategoryID)
	assert.Equal(t, "t1", list[1].ID)
	assert.False(t, list[1].Completed)
	assert.Nil(t, list[1].CategoryID)

	list, err = repo.ListByOwner(ctx, a.ID, entity.TodoFilter{Completed: boolp(false)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t1", list[0].ID)

	list, err = repo.ListByOwner(ctx, a.ID, entity.TodoFilter{From: "2024-01-02", To: "2024-01-04", CategoryID: "work"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t2", list[0].ID)
}

func TestTodoRepositoryBulkCreate(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	repo := sqlite.NewTodoRepository(db)
	a := newUser(t, db, "a@x.com")

	batch := []entity.Todo{
		{ID: "b1", Text: "one", Date: "2024-02-01", OwnerID: "someone-else"},
		{ID: "b2", Text: "two", Completed: true, Date: "2024-02-02"},
	}
	n, err := repo.BulkCreate(ctx, a.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := repo.ListByOwner(ctx, a.ID, entity.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[1].OwnerID)

	_, err = repo.BulkCreate(ctx, a.ID, []entity.Todo{{ID: "b3", Text: "ok", Date: "2024-02-03"}, {ID: "b4", Text: "no date"}})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, apperror.MessageOf(err), "index 1")

	_, err = repo.BulkCreate(ctx, a.ID, []entity.Todo{{ID: "b5", Text: "fresh", Date: "2024-02-05"}, {ID: "b1", Text: "dup", Date: "2024-02-01"}})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = repo.BulkCreate(ctx, a.ID, nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	list, err = repo.ListByOwner(ctx, a.ID, entity.TodoFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "rejected batches leave nothing behind")
}

func TestTodoRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	repo := sqlite.NewTodoRepository(db)
	a := newUser(t, db, "a@x.com")
	b := newUser(t, db, "b@x.com")
	require.NoError(t, repo.Create(ctx, a.ID, &entity.Todo{ID: "t1", Text: "buy milk", Date: "2024-01-01", CategoryID: strp("home")}))

	err := repo.Update(ctx, a.ID, "t1", entity.TodoPatch{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = repo.Update(ctx, b.ID, "t1", entity.TodoPatch{Completed: boolp(true)})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	err = repo.Update(ctx, a.ID, "nope", entity.TodoPatch{Completed: boolp(true)})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	require.NoError(t, repo.Update(ctx, a.ID, "t1", entity.TodoPatch{Completed: boolp(true)}))
	list, err := repo.ListByOwner(ctx, a.ID, entity.TodoFilter{})
	require.NoError(t, err)
	assert.True(t, list[0].Completed)
	assert.Equal(t, "buy milk", list[0].Text)
	assert.Equal(t, "home", *list[0].CategoryID)

	require.NoError(t, repo.Update(ctx, a.ID, "t1", entity.TodoPatch{CategoryID: entity.OptionalString{Set: true}}))
	list, err = repo.ListByOwner(ctx, a.ID, entity.TodoFilter{})
	require.NoError(t, err)
	assert.Nil(t, list[0].CategoryID)
	assert.True(t, list[0].Completed)
}

func TestTodoRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	repo := sqlite.NewTodoRepository(db)
	a := newUser(t, db, "a@x.com")
	b := newUser(t, db, "b@x.com")
	_, err := repo.BulkCreate(ctx, a.ID, []entity.Todo{
		{ID: "t1", Text: "1", Date: "2024-01-01"},
		{ID: "t2", Text: "2", Date: "2024-01-02"},
		{ID: "t3", Text: "3", Date: "2024-01-03"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, b.ID, &entity.Todo{ID: "t4", Text: "4", Date: "2024-01-04"}))

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(repo.Delete(ctx, b.ID, "t1")))
	require.NoError(t, repo.Delete(ctx, a.ID, "t1"))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(repo.Delete(ctx, a.ID, "t1")))

	n, err := repo.DeleteAll(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := repo.ListByOwner(ctx, b.ID, entity.TodoFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestStoreInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	store := sqlite.NewStore(db)
	a := newUser(t, db, "a@x.com")

	err := store.InTx(ctx, func(r repository.Registry) error {
		if err := r.Categories.CreateMany(ctx, entity.DefaultCategories(a.ID)); err != nil {
			return err
		}
		return r.Todos.Create(ctx, a.ID, &entity.Todo{ID: "t1", Text: "missing date"})
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	n, err := store.Registry().Categories.CountByOwner(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRevocationStore(t *testing.T) {
	ctx := context.Background()
	db := schematest.NewDB(t)
	store := sqlite.NewRevocationStore(db)
	now := time.Now()

	require.NoError(t, store.Revoke(ctx, "expired", "u1", now.Add(-time.Minute)))
	require.NoError(t, store.Revoke(ctx, "live", "u1", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "forever", "u1", time.Time{}))
	require.NoError(t, store.Revoke(ctx, "live", "u1", now.Add(time.Hour)), "revoking twice is fine")

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = store.IsRevoked(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, revoked)

	n, err := store.Prune(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for _, jti := range []string{"live", "forever"} {
		revoked, err := store.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked, jti)
	}
}
