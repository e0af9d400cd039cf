package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
)

const ns = "sistema_entregas.test"

type sortKey struct {
	Field     string
	Direction int64
}

// findFilter decodes the filter of a recorded find command.
func findFilter(mt *mtest.T, cmd bson.Raw) map[string]interface{} {
	mt.Helper()
	filter := map[string]interface{}{}
	require.NoError(mt, bson.Unmarshal(cmd.Lookup("filter").Document(), &filter))
	return filter
}

// findSort lists the sort keys of a recorded find command, in order.
func findSort(mt *mtest.T, cmd bson.Raw) []sortKey {
	mt.Helper()
	elems, err := cmd.Lookup("sort").Document().Elements()
	require.NoError(mt, err)
	keys := make([]sortKey, 0, len(elems))
	for _, el := range elems {
		keys = append(keys, sortKey{Field: el.Key(), Direction: el.Value().AsInt64()})
	}
	return keys
}

func deliveryBSON(id primitive.ObjectID, owner string, status delivery.Status, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "owner", Value: owner},
		{Key: "subject", Value: "Base de Datos"},
		{Key: "task", Value: "Modelo ER"},
		{Key: "due_date", Value: createdAt},
		{Key: "file_url", Value: "#"},
		{Key: "status", Value: string(status)},
		{Key: "created_at", Value: createdAt},
		{Key: "updated_at", Value: createdAt},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		usr, err := repo.CreateUser(ctx, user.User{Identifier: "A001", Role: user.RoleStudent, PasswordHash: []byte("hash")})
		require.NoError(mt, err)
		assert.NotEmpty(mt, usr.ID)
		assert.Equal(mt, "A001", usr.Identifier)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewUserRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.CreateUser(ctx, user.User{Identifier: "A001"})
		assert.ErrorIs(mt, err, user.ErrAlreadyExists)
	})

	mt.Run("get by identifier", func(mt *mtest.T) {
		repo := NewUserRepository(&DB{db: mt.DB})
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "identifier", Value: "admin"},
			{Key: "role", Value: user.RoleAdmin},
			{Key: "password_hash", Value: []byte("hash")},
		}))

		usr, err := repo.GetUserByIdentifier(ctx, "admin")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), usr.ID)
		assert.True(mt, usr.IsAdmin())
		assert.Equal(mt, []byte("hash"), usr.PasswordHash)
	})

	mt.Run("get by identifier not found", func(mt *mtest.T) {
		repo := NewUserRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetUserByIdentifier(ctx, "nobody")
		assert.ErrorIs(mt, err, user.ErrNotFound)
	})

	mt.Run("get by malformed id", func(mt *mtest.T) {
		repo := NewUserRepository(&DB{db: mt.DB})
		_, err := repo.GetUserByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, user.ErrNotFound)
	})
}

func TestDeliveryRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		d, err := repo.CreateDelivery(ctx, delivery.Delivery{
			Owner:     "A001",
			Subject:   "Base de Datos",
			Task:      "Modelo ER",
			DueDate:   now,
			FileURL:   "#",
			Status:    delivery.InitialStatus,
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(mt, err)
		assert.NotEmpty(mt, d.ID)
		assert.Equal(mt, delivery.InitialStatus, d.Status)
	})

	mt.Run("query", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			deliveryBSON(id2, "A001", delivery.StatusApproved, now),
			deliveryBSON(id1, "A001", delivery.StatusSubmitted, now.Add(-time.Hour)),
		))

		deliveries, err := repo.QueryDeliveries(ctx, delivery.QueryFilter{Owner: "A001"}, delivery.DefaultOrdering)
		require.NoError(mt, err)
		require.Len(mt, deliveries, 2)
		assert.Equal(mt, id2.Hex(), deliveries[0].ID)
		assert.Equal(mt, id1.Hex(), deliveries[1].ID)
		assert.Equal(mt, delivery.StatusApproved, deliveries[0].Status)
		assert.True(mt, deliveries[0].CreatedAt.Equal(now))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Equal(mt, map[string]interface{}{"owner": "A001"}, findFilter(mt, started.Command))
		assert.Equal(mt, []sortKey{{"created_at", -1}, {"_id", -1}}, findSort(mt, started.Command))
	})

	mt.Run("query empty", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		deliveries, err := repo.QueryDeliveries(ctx, delivery.QueryFilter{}, core.DBOrdering{Field: "created_at"})
		require.NoError(mt, err)
		assert.NotNil(mt, deliveries)
		assert.Empty(mt, deliveries)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Empty(mt, findFilter(mt, started.Command))
		assert.Equal(mt, []sortKey{{"created_at", 1}, {"_id", 1}}, findSort(mt, started.Command))
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		oid := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: deliveryBSON(oid, "A002", delivery.StatusRejected, now)},
		})

		d, err := repo.UpdateDeliveryStatus(ctx, oid.Hex(), delivery.StatusRejected, now)
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), d.ID)
		assert.Equal(mt, delivery.StatusRejected, d.Status)
	})

	mt.Run("update status not found", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.UpdateDeliveryStatus(ctx, primitive.NewObjectID().Hex(), delivery.StatusApproved, now)
		assert.ErrorIs(mt, err, delivery.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := repo.DeleteDelivery(ctx, primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})

	mt.Run("delete not found", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteDelivery(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, delivery.ErrNotFound)
	})

	mt.Run("malformed ids", func(mt *mtest.T) {
		repo := NewDeliveryRepository(&DB{db: mt.DB})

		_, err := repo.GetDeliveryByID(ctx, "42")
		assert.ErrorIs(mt, err, delivery.ErrNotFound)
		_, err = repo.UpdateDeliveryStatus(ctx, "42", delivery.StatusApproved, now)
		assert.ErrorIs(mt, err, delivery.ErrNotFound)
		assert.ErrorIs(mt, repo.DeleteDelivery(ctx, "42"), delivery.ErrNotFound)
	})
}
