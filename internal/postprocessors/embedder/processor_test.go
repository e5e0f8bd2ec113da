package embedder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

type fakeEmbeddings struct {
	mu      sync.Mutex
	calls   int
	failOn  int
	failErr error
	short   bool
}

func (f *fakeEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (f *fakeEmbeddings) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if f.failOn > 0 && call == f.failOn {
		if f.failErr != nil {
			return nil, f.failErr
		}
		return nil, errors.New("provider down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	if f.short {
		return out[:len(out)-1], nil
	}
	return out, nil
}

func (f *fakeEmbeddings) Dimensions() int              { return 1 }
func (f *fakeEmbeddings) ModelName() string            { return "fake" }
func (f *fakeEmbeddings) Ping(_ context.Context) error { return nil }
func (f *fakeEmbeddings) Close() error                 { return nil }

func makeChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{ID: string(rune('a' + i)), Position: i, Content: string(make([]byte, i+1))}
	}
	return chunks
}

func TestProcessor_Process_EmbedsAllChunks(t *testing.T) {
	svc := &fakeEmbeddings{}
	p := New(svc, WithBatchSize(2), WithConcurrency(2))
	in := makeChunks(5)

	out, err := p.Process(context.Background(), &domain.Document{ID: "d"}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.calls != 3 {
		t.Errorf("expected 3 batches, got %d", svc.calls)
	}
	for i, c := range out {
		if len(c.Embedding) != 1 || c.Embedding[0] != float32(i+1) {
			t.Errorf("chunk %d has wrong embedding %v", i, c.Embedding)
		}
	}
	if in[0].Embedding != nil {
		t.Error("input chunks must not be modified")
	}
}

func TestProcessor_Process_FailureDropsAllVectors(t *testing.T) {
	p := New(&fakeEmbeddings{failOn: 2}, WithBatchSize(1), WithConcurrency(1))

	out, err := p.Process(context.Background(), &domain.Document{ID: "d"}, makeChunks(3))
	if err != nil {
		t.Fatalf("embedding failures degrade, got error: %v", err)
	}
	for _, c := range out {
		if c.Embedding != nil {
			t.Errorf("expected no embeddings after a failed batch, got %v", c.Embedding)
		}
	}
}

func TestProcessor_Process_RetriesTimedOutBatchOnce(t *testing.T) {
	svc := &fakeEmbeddings{failOn: 1, failErr: fmt.Errorf("embed: %w", domain.ErrTimeout)}
	p := New(svc, WithBatchSize(3), WithRetryBackoff(time.Millisecond))

	out, err := p.Process(context.Background(), &domain.Document{ID: "d"}, makeChunks(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.calls != 2 {
		t.Errorf("expected one retry, got %d calls", svc.calls)
	}
	for i, c := range out {
		if len(c.Embedding) != 1 {
			t.Errorf("chunk %d has no embedding after retry", i)
		}
	}
}

func TestProcessor_Process_OtherFailuresAreNotRetried(t *testing.T) {
	svc := &fakeEmbeddings{failOn: 1, failErr: domain.ErrProviderUnavailable}
	p := New(svc, WithBatchSize(3), WithRetryBackoff(time.Millisecond))

	out, err := p.Process(context.Background(), &domain.Document{ID: "d"}, makeChunks(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.calls != 1 {
		t.Errorf("expected no retry, got %d calls", svc.calls)
	}
	if out[0].Embedding != nil {
		t.Error("expected chunks without vectors")
	}
}

func TestProcessor_Process_ShortResponse(t *testing.T) {
	p := New(&fakeEmbeddings{short: true})

	out, err := p.Process(context.Background(), &domain.Document{ID: "d"}, makeChunks(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Embedding != nil {
		t.Error("malformed responses must not attach vectors")
	}
}

func TestProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&fakeEmbeddings{failOn: 1}).Process(ctx, &domain.Document{ID: "d"}, makeChunks(1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProcessor_Process_NoChunks(t *testing.T) {
	svc := &fakeEmbeddings{}
	out, err := New(svc).Process(context.Background(), &domain.Document{ID: "d"}, nil)
	if err != nil || out != nil || svc.calls != 0 {
		t.Errorf("expected no work for no chunks, got %v %v %d", out, err, svc.calls)
	}
}
