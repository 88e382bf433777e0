package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleboard/pkg/errors"
)

func TestStore_CreateAndTranscript(t *testing.T) {
	store := NewStore()

	id := store.Create()
	require.NotEmpty(t, id)

	entries, err := store.Transcript(id)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_AppendOrder(t *testing.T) {
	store := NewStore()
	id := store.Create()

	store.Append(id, RoleUser, "What was the highest price?")
	store.Append(id, RoleAssistant, "The highest price was 108.")

	entries, err := store.Transcript(id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, RoleUser, entries[0].Role)
	assert.Equal(t, "What was the highest price?", entries[0].Content)
	assert.Equal(t, RoleAssistant, entries[1].Role)
	assert.False(t, entries[0].At.IsZero())
}

func TestStore_UnknownSession(t *testing.T) {
	store := NewStore()

	_, err := store.Transcript("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestStore_AppendCreatesUnknownSession(t *testing.T) {
	store := NewStore()

	store.Append("stale-id", RoleUser, "hello")

	entries, err := store.Transcript("stale-id")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_TranscriptIsCopy(t *testing.T) {
	store := NewStore()
	id := store.Create()
	store.Append(id, RoleUser, "original")

	entries, err := store.Transcript(id)
	require.NoError(t, err)
	entries[0].Content = "mutated"

	again, err := store.Transcript(id)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore()
	id := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Append(id, RoleUser, "q")
		}()
	}
	wg.Wait()

	entries, err := store.Transcript(id)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}
