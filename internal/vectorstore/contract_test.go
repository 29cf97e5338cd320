package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id, content string, meta map[string]string, emb ...float32) Record {
	return Record{ID: id, Content: content, Metadata: meta, Embedding: emb}
}

// testStoreContract exercises behaviour every backend must share.
func testStoreContract(t *testing.T, s Store, coll string) {
	ctx := context.Background()
	require.NoError(t, s.DeleteCollection(ctx, coll))
	t.Cleanup(func() { _ = s.DeleteCollection(ctx, coll) })

	t.Run("empty collection", func(t *testing.T) {
		require.NoError(t, s.GetOrCreateCollection(ctx, coll))

		n, err := s.Count(ctx, coll)
		require.NoError(t, err)
		assert.Zero(t, n)

		matches, err := s.Query(ctx, coll, []float32{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("upsert and rank", func(t *testing.T) {
		require.NoError(t, s.Upsert(ctx, coll, []Record{
			rec("acme_0", "acme payments", map[string]string{"client_id": "acme", "product": "payments"}, 1, 0, 0),
			rec("acme_1", "acme cloud", map[string]string{"client_id": "acme", "product": "cloud"}, 0.8, 0.6, 0),
			rec("globex_0", "globex payments", map[string]string{"client_id": "globex", "product": "payments"}, 0, 1, 0),
		}))
		require.NoError(t, s.Upsert(ctx, coll, nil))

		n, err := s.Count(ctx, coll)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		matches, err := s.Query(ctx, coll, []float32{1, 0, 0}, 10, nil)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "acme_0", matches[0].ID)
		assert.Equal(t, "acme_1", matches[1].ID)
		assert.Equal(t, "globex_0", matches[2].ID)
		assert.InDelta(t, 0, matches[0].Distance, 1e-5)
		assert.InDelta(t, 0.2, matches[1].Distance, 1e-5)
		assert.InDelta(t, 1, matches[2].Distance, 1e-5)
		assert.Equal(t, "acme payments", matches[0].Content)
		assert.Equal(t, "payments", matches[0].Metadata["product"])

		top, err := s.Query(ctx, coll, []float32{1, 0, 0}, 1, nil)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "acme_0", top[0].ID)
	})

	t.Run("filters", func(t *testing.T) {
		one, err := s.Query(ctx, coll, []float32{0, 1, 0}, 10, Eq{Key: "client_id", Value: "acme"})
		require.NoError(t, err)
		require.Len(t, one, 2)
		for _, m := range one {
			assert.Equal(t, "acme", m.Metadata["client_id"])
		}
		assert.Equal(t, "acme_1", one[0].ID)

		both, err := s.Query(ctx, coll, []float32{0, 1, 0}, 10, BuildFilter(map[string]string{"client_id": "acme", "product": "payments"}))
		require.NoError(t, err)
		require.Len(t, both, 1)
		assert.Equal(t, "acme_0", both[0].ID)

		none, err := s.Query(ctx, coll, []float32{0, 1, 0}, 10, Eq{Key: "client_id", Value: "initech"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("upsert overwrites by id", func(t *testing.T) {
		require.NoError(t, s.Upsert(ctx, coll, []Record{
			rec("globex_0", "globex payments v2", map[string]string{"client_id": "globex"}, 0, 0, 1),
		}))

		n, err := s.Count(ctx, coll)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		matches, err := s.Query(ctx, coll, []float32{0, 0, 1}, 1, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "globex payments v2", matches[0].Content)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.DeleteCollection(ctx, coll))
		require.NoError(t, s.DeleteCollection(ctx, coll))

		n, err := s.Count(ctx, coll)
		require.NoError(t, err)
		assert.Zero(t, n)

		matches, err := s.Query(ctx, coll, []float32{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}
