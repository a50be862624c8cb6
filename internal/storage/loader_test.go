package storage

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"geoload/pkg/document"
)

func feed(docs ...document.Doc) <-chan document.Doc {
	ch := make(chan document.Doc, len(docs))
	for _, d := range docs {
		ch <- d
	}
	close(ch)
	return ch
}

func docN(n int) document.Doc {
	return document.Doc{{Key: "n", Value: int64(n)}}
}

/*
TestLoadBatches_Batching verifies batch assembly: ceil(L/batchSize) insert
calls, full batches followed by a short tail, documents in arrival order,
and a correct cumulative total.
*/
func TestLoadBatches_Batching(t *testing.T) {
	tests := []struct {
		name      string
		docs      int
		batchSize int
		wantSizes []int
	}{
		{name: "exact_multiple", docs: 6, batchSize: 3, wantSizes: []int{3, 3}},
		{name: "short_tail", docs: 7, batchSize: 3, wantSizes: []int{3, 3, 1}},
		{name: "single_batch", docs: 2, batchSize: 5, wantSizes: []int{2}},
		{name: "batch_of_one", docs: 3, batchSize: 1, wantSizes: []int{1, 1, 1}},
		{name: "empty_input_no_calls", docs: 0, batchSize: 3, wantSizes: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs := make([]document.Doc, tc.docs)
			for i := range docs {
				docs[i] = docN(i)
			}

			var sizes []int
			next := 0
			insert := func(_ context.Context, batch []document.Doc) (int64, error) {
				sizes = append(sizes, len(batch))
				for _, d := range batch {
					if got := d[0].Value.(int64); got != int64(next) {
						t.Fatalf("out of order: got doc %d, want %d", got, next)
					}
					next++
				}
				return int64(len(batch)), nil
			}

			total, err := LoadBatches(context.Background(), feed(docs...), tc.batchSize, insert, zap.NewNop().Sugar())
			if err != nil {
				t.Fatalf("LoadBatches: %v", err)
			}
			if total != int64(tc.docs) {
				t.Fatalf("total = %d, want %d", total, tc.docs)
			}
			if len(sizes) != len(tc.wantSizes) {
				t.Fatalf("insert calls = %v, want %v", sizes, tc.wantSizes)
			}
			for i := range sizes {
				if sizes[i] != tc.wantSizes[i] {
					t.Fatalf("insert calls = %v, want %v", sizes, tc.wantSizes)
				}
			}
		})
	}
}

/*
TestLoadBatches_InsertError verifies that an insert error is terminal: no
further batches are attempted, the partial count the sink reported is still
added to the total, and the error propagates.
*/
func TestLoadBatches_InsertError(t *testing.T) {
	sentinel := errors.New("write failed")
	calls := 0
	insert := func(_ context.Context, batch []document.Doc) (int64, error) {
		calls++
		// Partial success: 1 of the batch landed before the failure.
		return 1, sentinel
	}

	total, err := LoadBatches(context.Background(), feed(docN(0), docN(1), docN(2), docN(3)), 2, insert, zap.NewNop().Sugar())
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if calls != 1 {
		t.Fatalf("insert called %d times after failure, want 1", calls)
	}
	if total != 1 {
		t.Fatalf("total = %d, want the partial count 1", total)
	}
}

/*
TestLoadBatches_BadArgs verifies argument validation before any channel
read.
*/
func TestLoadBatches_BadArgs(t *testing.T) {
	nop := func(context.Context, []document.Doc) (int64, error) { return 0, nil }

	if _, err := LoadBatches(context.Background(), feed(), 0, nop, zap.NewNop().Sugar()); err == nil {
		t.Fatal("batchSize 0 accepted")
	}
	if _, err := LoadBatches(context.Background(), feed(), 1, nil, zap.NewNop().Sugar()); err == nil {
		t.Fatal("nil insert accepted")
	}
}

/*
TestLoadBatches_Canceled verifies cancellation: with a canceled context and
an open (never-closing) channel, LoadBatches returns ctx.Err promptly.
*/
func TestLoadBatches_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	open := make(chan document.Doc)
	insert := func(context.Context, []document.Doc) (int64, error) {
		t.Fatal("insert called after cancellation")
		return 0, nil
	}

	_, err := LoadBatches(ctx, open, 2, insert, zap.NewNop().Sugar())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
