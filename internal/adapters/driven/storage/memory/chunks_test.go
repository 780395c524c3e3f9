package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

func makeChunks(docID string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s-%d", docID, i),
			DocumentID: docID,
			Filename:   docID + ".txt",
			Content:    fmt.Sprintf("chunk %d", i),
			Position:   i,
			Embedding:  []float32{1, 0},
			Metadata: map[string]any{
				domain.MetaFileType:   "txt",
				domain.MetaIngestedAt: "2024-01-02T03:04:05Z",
			},
		}
	}
	return chunks
}

func scanAll(t *testing.T, r *ChunkRepository, docID string) []domain.Chunk {
	t.Helper()
	var out []domain.Chunk
	require.NoError(t, r.Scan(context.Background(), docID, func(c domain.Chunk) error {
		out = append(out, c)
		return nil
	}))
	return out
}

func TestNewChunkRepository(t *testing.T) {
	r := NewChunkRepository()
	require.NotNil(t, r)
	assert.Empty(t, scanAll(t, r, ""))
}

func TestChunkRepository_InsertAndScan(t *testing.T) {
	r := NewChunkRepository()
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, makeChunks("b", 2)))
	require.NoError(t, r.Insert(ctx, makeChunks("a", 3)))

	all := scanAll(t, r, "")
	require.Len(t, all, 5)
	assert.Equal(t, "b-0", all[0].ID)
	assert.Equal(t, "a-2", all[4].ID)

	onlyA := scanAll(t, r, "a")
	require.Len(t, onlyA, 3)
	for i, c := range onlyA {
		assert.Equal(t, i, c.Position)
	}
	assert.Empty(t, scanAll(t, r, "missing"))
}

func TestChunkRepository_Insert_DuplicateRejectsBatch(t *testing.T) {
	r := NewChunkRepository()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, makeChunks("a", 1)))

	batch := append(makeChunks("b", 2), domain.Chunk{ID: "a-0", DocumentID: "b"})
	require.Error(t, r.Insert(ctx, batch))

	assert.Len(t, scanAll(t, r, ""), 1)
	assert.Empty(t, scanAll(t, r, "b"))
}

func TestChunkRepository_Insert_DuplicateWithinBatch(t *testing.T) {
	r := NewChunkRepository()
	batch := []domain.Chunk{{ID: "x", DocumentID: "d"}, {ID: "x", DocumentID: "d"}}

	require.Error(t, r.Insert(context.Background(), batch))
	assert.Empty(t, scanAll(t, r, ""))
}

func TestChunkRepository_Insert_CopiesInput(t *testing.T) {
	r := NewChunkRepository()
	chunks := makeChunks("a", 1)
	require.NoError(t, r.Insert(context.Background(), chunks))

	chunks[0].Embedding[0] = 99
	chunks[0].Metadata["extra"] = true

	stored := scanAll(t, r, "a")[0]
	assert.Equal(t, float32(1), stored.Embedding[0])
	assert.NotContains(t, stored.Metadata, "extra")
}

func TestChunkRepository_DeleteDocument(t *testing.T) {
	r := NewChunkRepository()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, makeChunks("a", 3)))
	require.NoError(t, r.Insert(ctx, makeChunks("b", 2)))

	n, err := r.DeleteDocument(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = r.DeleteDocument(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)

	all := scanAll(t, r, "")
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].DocumentID)
}

func TestChunkRepository_ListDocuments(t *testing.T) {
	r := NewChunkRepository()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, makeChunks("second", 2)))
	require.NoError(t, r.Insert(ctx, makeChunks("first", 1)))

	docs, err := r.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "second", docs[0].ID)
	assert.Equal(t, "second.txt", docs[0].Filename)
	assert.Equal(t, "txt", docs[0].FileType)
	assert.Equal(t, 2, docs[0].ChunkCount)
	assert.Equal(t, 2024, docs[0].IngestedAt.Year())
	assert.Equal(t, "first", docs[1].ID)
}

func TestChunkRepository_Scan_Errors(t *testing.T) {
	r := NewChunkRepository()
	require.NoError(t, r.Insert(context.Background(), makeChunks("a", 3)))

	stop := errors.New("stop")
	err := r.Scan(context.Background(), "", func(domain.Chunk) error { return stop })
	assert.ErrorIs(t, err, stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.Scan(ctx, "", func(domain.Chunk) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkRepository_Meta(t *testing.T) {
	r := NewChunkRepository()
	ctx := context.Background()

	_, ok, err := r.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetMeta(ctx, "k", "v"))
	v, ok, err := r.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.NoError(t, r.Close())
}

func TestChunkRepository_Concurrency(t *testing.T) {
	r := NewChunkRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, r.Insert(ctx, makeChunks(fmt.Sprintf("doc%d", n), 4)))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.ListDocuments(ctx)
		}()
	}
	wg.Wait()

	docs, err := r.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 20)
	assert.Len(t, scanAll(t, r, ""), 80)
}

func TestChunkRepository_InterfaceCompliance(t *testing.T) {
	var _ driven.ChunkRepository = (*ChunkRepository)(nil)
}
