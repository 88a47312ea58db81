//go:build integration

package service_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/cloo-solutions/dokrag/internal/repository"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/cloo-solutions/dokrag/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineCircular = `SURAT EDARAN
NOMOR : SE/07/2023
TENTANG
PENGGUNAAN ALAT PELINDUNG DIRI

1. Latar Belakang
Keselamatan kerja merupakan prioritas perusahaan.
2. Ketentuan
Seluruh pegawai wajib memakai APD di area kerja.
3. Penutup
Surat edaran ini berlaku sejak tanggal ditetapkan.

Dikeluarkan di : Jakarta
Pada tanggal : 3 Maret 2023
DIREKTUR SDM

ANI WIJAYA
`

// keywordClient embeds texts as normalized keyword counts, so similarity
// follows shared vocabulary.
type keywordClient struct{}

var vocabulary = [][]string{
	{"pelindung", "apd"},
	{"keselamatan"},
	{"berlaku", "ditetapkan"},
}

func (keywordClient) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(vocabulary)+1)
		vec[len(vocabulary)] = 0.05
		for dim, words := range vocabulary {
			for _, w := range words {
				vec[dim] += float32(strings.Count(lower, w))
			}
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		for j := range vec {
			vec[j] /= float32(math.Sqrt(norm))
		}
		out[i] = vec
	}
	return out, nil
}

func (keywordClient) ModelTag() string { return "test/keywords" }

func TestPipeline_IngestThenSearch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(context.Background()) })
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	m := metrics.New(prometheus.NewRegistry())
	embedder, err := service.NewEmbedder(keywordClient{}, service.DefaultEmbedderConfig(), m, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(embedder.Release)

	documents := repository.NewDocumentRepository(pool)
	ingest := service.NewIngestionService(documents, repository.NewChunkRepository(pool),
		repository.NewTxRunner(pool), embedder, nil, m, zerolog.Nop())
	logs := repository.NewSearchLogRepository(pool)
	search := service.NewRetrievalService(repository.NewSearchRepository(pool), documents, embedder,
		logs, service.DefaultRetrievalConfig(), m, zerolog.Nop())

	out, err := ingest.Ingest(ctx, service.IngestInput{SourceKey: "se-07.txt", Text: pipelineCircular})
	require.NoError(t, err)
	doc := out.Document
	assert.Equal(t, domain.DocumentStatusIndexed, doc.Status)
	assert.Equal(t, domain.GenreCircular, doc.Genre)
	assert.Equal(t, "SE/07/2023", doc.Nomor)
	assert.Len(t, out.Chunks, 4)

	again, err := ingest.Ingest(ctx, service.IngestInput{SourceKey: "se-07.txt", Text: pipelineCircular})
	require.NoError(t, err)
	assert.True(t, again.Unchanged)
	assert.Equal(t, doc.ID, again.Document.ID)

	res, err := search.Search(ctx, service.SearchInput{Query: "alat pelindung diri"})
	require.NoError(t, err)
	assert.Equal(t, service.SearchModeHybrid, res.Mode)
	require.NotEmpty(t, res.Hits)

	top := res.Hits[0]
	assert.Equal(t, doc.ID, top.DocumentID)
	assert.Equal(t, "SE/07/2023", top.Nomor)
	assert.GreaterOrEqual(t, top.VectorSimilarity, service.DefaultThreshold)
	for i := 1; i < len(res.Hits); i++ {
		assert.GreaterOrEqual(t, res.Hits[i-1].FusedScore, res.Hits[i].FusedScore)
	}

	var hitContents []string
	for _, h := range res.Hits {
		hitContents = append(hitContents, h.Content)
		assert.NotContains(t, h.Content, "Keselamatan kerja", "below-threshold chunk returned")
	}
	assert.Contains(t, strings.Join(hitContents, "\n"), "APD")

	var logged int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM search_logs WHERE query = $1`, "alat pelindung diri").Scan(&logged))
	assert.Equal(t, 1, logged)
}
