package redis

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badgekit/core"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestAwardStore_InsertIfAbsent_Lifetime(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	created, err := store.InsertIfAbsent(ctx, core.BadgeTeacher, "bob", nil)
	require.NoError(t, err)
	assert.True(t, created)

	// Same lifetime scope: absorbed
	created, err = store.InsertIfAbsent(ctx, core.BadgeTeacher, "bob", nil)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := store.Count(ctx, core.BadgeTeacher, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Guard key present, holding the recipient
	holder, err := client.Get(ctx, guardKey(core.BadgeTeacher, "bob", nil)).Result()
	require.NoError(t, err)
	assert.Equal(t, "bob", holder)
}

func TestAwardStore_InsertIfAbsent_ContentScope(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()
	a1 := core.ContentRef("a1")
	a2 := core.ContentRef("a2")

	created, err := store.InsertIfAbsent(ctx, core.BadgeNiceAnswer, "bob", &a1)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.InsertIfAbsent(ctx, core.BadgeNiceAnswer, "bob", &a1)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = store.InsertIfAbsent(ctx, core.BadgeNiceAnswer, "bob", &a2)
	require.NoError(t, err)
	assert.True(t, created)

	n, err := store.Count(ctx, core.BadgeNiceAnswer, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAwardStore_Count_Empty(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)

	n, err := store.Count(context.Background(), core.BadgeGuru, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAwardStore_InsertIfAbsent_Concurrent(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := store.InsertIfAbsent(ctx, core.BadgeScholar, "alice", nil)
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			if created {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	n, err := store.Count(ctx, core.BadgeScholar, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGuardKeys(t *testing.T) {
	ref := core.ContentRef("q42")
	assert.Equal(t, "award:nice-question:c:q42", guardKey(core.BadgeNiceQuestion, "alice", &ref))
	assert.Equal(t, "award:scholar:u:alice", guardKey(core.BadgeScholar, "alice", nil))
	assert.Equal(t, "awards:alice:scholar", countKey(core.BadgeScholar, "alice"))
}
