package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

// Each subtest runs against the driver's in-process mock deployment; replies
// are queued with AddMockResponses and sent commands are read back from the
// command monitor.
func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestUserRepository_Create(t *testing.T) {
	mt := newMockT(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	user := &domain.User{
		Email:        "Ana@School.com",
		PasswordHash: "hash",
		Role:         domain.RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mt.Run("normalizes email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := repo.Create(context.Background(), user)
		require.NoError(mt, err)
		assert.Equal(mt, "ana@school.com", got.Email)
		assert.NotEmpty(mt, got.ID)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
	})

	mt.Run("duplicate key maps to ErrUserExists", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.users index: email_1",
		}))

		_, err := repo.Create(context.Background(), user)
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("other write errors are wrapped", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))

		_, err := repo.Create(context.Background(), user)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrUserExists)
	})
}

func TestUserRepository_BadObjectID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("find and set active", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "not-hex")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
		_, err = repo.SetActive(context.Background(), "not-hex", false)
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)

		assert.Empty(mt, mt.GetAllStartedEvents(), "no command may reach the server")
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	mt := newMockT(t)
	oid := primitive.NewObjectID()
	ns := mtest.TestDb + "." + usersCollection

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "hr@acme.com"},
			{Key: "role", Value: "COMPANY"},
			{Key: "is_active", Value: true},
		}))

		got, err := repo.FindByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), got.ID)
		assert.Equal(mt, domain.RoleCompany, got.Role)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), oid.Hex())
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_List(t *testing.T) {
	mt := newMockT(t)
	ns := mtest.TestDb + "." + usersCollection

	mt.Run("pages without password hashes", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "email", Value: "ana@school.com"},
				{Key: "role", Value: "STUDENT"},
				{Key: "is_active", Value: true},
			}),
		)

		users, total, err := repo.List(context.Background(), ports.ListUsersFilter{
			Role:  domain.RoleStudent,
			Page:  2,
			Limit: 1,
		})
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, total)
		require.Len(mt, users, 1)
		assert.Equal(mt, "ana@school.com", users[0].Email)
		assert.Empty(mt, users[0].PasswordHash)

		var find bson.Raw
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "find" {
				find = evt.Command
			}
		}
		require.NotNil(mt, find, "expected a find command")

		hidden, ok := find.Lookup("projection", "password_hash").AsInt64OK()
		require.True(mt, ok, "find must carry a password_hash projection")
		assert.EqualValues(mt, 0, hidden)
		assert.Equal(mt, "STUDENT", find.Lookup("filter", "role").StringValue())
		skip, _ := find.Lookup("skip").AsInt64OK()
		limit, _ := find.Lookup("limit").AsInt64OK()
		assert.EqualValues(mt, 1, skip)
		assert.EqualValues(mt, 1, limit)
	})
}

func TestUserRepository_SetActive(t *testing.T) {
	mt := newMockT(t)
	oid := primitive.NewObjectID()

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "hr@acme.com"},
			{Key: "role", Value: "COMPANY"},
			{Key: "is_active", Value: false},
		}}))

		got, err := repo.SetActive(context.Background(), oid.Hex(), false)
		require.NoError(mt, err)
		assert.False(mt, got.IsActive)
		assert.Equal(mt, oid.Hex(), got.ID)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.SetActive(context.Background(), oid.Hex(), true)
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}
