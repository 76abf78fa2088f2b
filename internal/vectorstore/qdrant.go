package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/domain"
)

const (
	payloadKeyText  = "text"
	payloadKeyIndex = "chunk_index"
	payloadKeyPage  = "page"
)

// Embedder turns text into fixed-length vectors, preserving input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index stores chunk embeddings in one Qdrant collection per session and
// answers nearest-neighbor queries against it.
type Index struct {
	client      *qdrant.Client
	embedder    Embedder
	log         *zap.Logger
	prefix      string
	dim         int
	timeout     time.Duration
	batchSize   int
	concurrency int
}

// NewIndex connects to Qdrant and returns a session-scoped vector index.
func NewIndex(cfg config.QdrantConfig, ingest config.IngestConfig, embedder Embedder, dim int, log *zap.Logger) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	batchSize := ingest.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 16
	}
	concurrency := ingest.EmbedConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Index{
		client:      client,
		embedder:    embedder,
		log:         log,
		prefix:      cfg.CollectionPrefix,
		dim:         dim,
		timeout:     timeout,
		batchSize:   batchSize,
		concurrency: concurrency,
	}, nil
}

// CollectionName returns the Qdrant collection scoped to a session.
func (x *Index) CollectionName(sessionID string) string {
	return x.prefix + sessionID
}

// Index embeds the chunks in bounded parallel batches, reassembles them in
// original order and upserts them into the session's collection, creating
// the collection first.
func (x *Index) Index(ctx context.Context, sessionID string, chunks []domain.Chunk) error {
	collection := x.CollectionName(sessionID)

	cctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	if err := x.client.CreateCollection(cctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(x.dim),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return mapQdrantErr("create collection", err)
	}

	vectors, err := x.embedAll(ctx, chunks)
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(chunk.Index)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadKeyText:  chunk.Text,
				payloadKeyIndex: chunk.Index,
				payloadKeyPage:  chunk.Page,
			}),
		}
	}

	uctx, ucancel := context.WithTimeout(ctx, x.timeout)
	defer ucancel()
	if _, err := x.client.Upsert(uctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	}); err != nil {
		return mapQdrantErr("upsert", err)
	}

	x.log.Info("indexed chunks",
		zap.String("collection", collection),
		zap.Int("chunks", len(chunks)),
	)
	return nil
}

// embedAll runs embedding batches concurrently but writes each batch result
// back into its original slot, so chunk order survives.
func (x *Index) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.concurrency)

	for start := 0; start < len(chunks); start += x.batchSize {
		end := start + x.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		start, end := start, end

		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Text
			}
			batch, err := x.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return fmt.Errorf("%w: embedding batch size mismatch", domain.ErrUpstream)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Query embeds the text and returns the top-k most similar chunks, ordered
// by descending score with ties broken by chunk index.
func (x *Index) Query(ctx context.Context, sessionID, text string, k int) ([]domain.RetrievedChunk, error) {
	collection := x.CollectionName(sessionID)
	if err := x.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	vecs, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: query embedding missing", domain.ErrUpstream)
	}

	qctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	points, err := x.client.Query(qctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vecs[0]...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, mapQdrantErr("query", err)
	}

	results := make([]domain.RetrievedChunk, 0, len(points))
	for _, p := range points {
		results = append(results, domain.RetrievedChunk{
			Chunk: chunkFromPayload(p.Payload),
			Score: p.Score,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})
	return results, nil
}

// Sample returns up to n chunks from the session's collection in chunk
// order, for quiz context that should cover more of the document than a
// single query would.
func (x *Index) Sample(ctx context.Context, sessionID string, n int) ([]domain.Chunk, error) {
	collection := x.CollectionName(sessionID)
	if err := x.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	points, err := x.client.Scroll(sctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          qdrant.PtrOf(uint32(1000)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, mapQdrantErr("scroll", err)
	}

	chunks := make([]domain.Chunk, 0, len(points))
	for _, p := range points {
		chunks = append(chunks, chunkFromPayload(p.Payload))
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })

	if n < len(chunks) {
		chunks = chunks[:n]
	}
	return chunks, nil
}

// DeleteSession drops the session's collection entirely.
func (x *Index) DeleteSession(ctx context.Context, sessionID string) error {
	dctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	if err := x.client.DeleteCollection(dctx, x.CollectionName(sessionID)); err != nil {
		return mapQdrantErr("delete collection", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (x *Index) Close() error {
	return x.client.Close()
}

func (x *Index) requireCollection(ctx context.Context, collection string) error {
	ectx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	exists, err := x.client.CollectionExists(ectx, collection)
	if err != nil {
		return mapQdrantErr("collection exists", err)
	}
	if !exists {
		return fmt.Errorf("%w: index for collection %s", domain.ErrNotFound, collection)
	}
	return nil
}

func chunkFromPayload(payload map[string]*qdrant.Value) domain.Chunk {
	chunk := domain.Chunk{}
	if v, ok := payload[payloadKeyText]; ok {
		chunk.Text = v.GetStringValue()
	}
	if v, ok := payload[payloadKeyIndex]; ok {
		chunk.Index = int(v.GetIntegerValue())
	}
	if v, ok := payload[payloadKeyPage]; ok {
		chunk.Page = int(v.GetIntegerValue())
	}
	return chunk
}

// mapQdrantErr translates transport failures into the service error
// taxonomy. A query racing a collection delete comes back as gRPC NotFound
// and must surface as a missing index, not a fault.
func mapQdrantErr(op string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("%w: qdrant %s: %v", domain.ErrUpstream, op, err)
}
