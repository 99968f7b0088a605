package postgres

import "testing"

func TestChunkEnd(t *testing.T) {
	t.Run("caps at total", func(t *testing.T) {
		if got := chunkEnd(0, 10); got != 10 {
			t.Fatalf("expected 10, got %d", got)
		}
	})

	t.Run("full chunk", func(t *testing.T) {
		if got := chunkEnd(0, insertChunkSize*2); got != insertChunkSize {
			t.Fatalf("expected %d, got %d", insertChunkSize, got)
		}
	})

	t.Run("last partial chunk", func(t *testing.T) {
		if got := chunkEnd(insertChunkSize, insertChunkSize+5); got != insertChunkSize+5 {
			t.Fatalf("expected %d, got %d", insertChunkSize+5, got)
		}
	})
}
