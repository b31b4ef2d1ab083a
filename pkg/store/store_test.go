package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

func record(id string, created time.Time) *Record {
	return &Record{
		ID:        id,
		Name:      "bell",
		Target:    "line5",
		Output:    "OPENQASM 2.0;\n",
		Size:      4,
		Ops:       map[string]int{"cx": 1, "u2": 1},
		CreatedAt: created,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, record("a", base)))
	require.NoError(t, s.Save(ctx, record("b", base.Add(time.Minute))))
	require.NoError(t, s.Save(ctx, record("c", base.Add(2*time.Minute))))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "bell", got.Name)
	got.Ops["cx"] = 99
	again, _ := s.Get(ctx, "b")
	assert.Equal(t, 1, again.Ops["cx"], "records must be copied")

	list, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	updated := record("a", base)
	updated.Size = 7
	require.NoError(t, s.Save(ctx, updated))
	got, _ = s.Get(ctx, "a")
	assert.Equal(t, 7, got.Size)

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.True(t, errors.Is(s.Save(ctx, &Record{}), errors.ErrCodeInvalidInput))
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		assert.NoError(mt, s.Save(context.Background(), record("a", time.Now())))
		assert.True(mt, errors.Is(s.Save(context.Background(), nil), errors.ErrCodeInvalidInput))
	})

	mt.Run("get", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "a"},
			{Key: "name", Value: "bell"},
			{Key: "target", Value: "line5"},
			{Key: "size", Value: 4},
			{Key: "ops", Value: bson.D{{Key: "cx", Value: 1}}},
		}))
		rec, err := s.Get(context.Background(), "a")
		require.NoError(mt, err)
		assert.Equal(mt, "bell", rec.Name)
		assert.Equal(mt, 4, rec.Size)
		assert.Equal(mt, 1, rec.Ops["cx"])
	})

	mt.Run("get missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := s.Get(context.Background(), "nope")
		assert.True(mt, errors.Is(err, errors.ErrCodeNotFound))
	})

	mt.Run("list", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b"}},
			bson.D{{Key: "_id", Value: "a"}},
		))
		list, err := s.List(context.Background(), 10)
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "b", list[0].ID)
		assert.NoError(mt, s.Close(context.Background()))
	})
}
