package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetBySourceKey(ctx context.Context, sourceKey string) (*domain.Document, error) {
	args := m.Called(ctx, sourceKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetMany(ctx context.Context, ids []string) (map[string]*domain.Document, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSectionRepository is a mock implementation of SectionRepository
type MockSectionRepository struct {
	mock.Mock
}

func (m *MockSectionRepository) CreateBatch(ctx context.Context, documentID string, sections []*domain.Section) error {
	args := m.Called(ctx, documentID, sections)
	return args.Error(0)
}

func (m *MockSectionRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Section, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Section), args.Error(1)
}

// MockChunkRepository is a mock implementation of ChunkRepository
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) CreateBatch(ctx context.Context, chunks []*domain.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) ListUnembedded(ctx context.Context, documentID, model string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, documentID, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32, model string) error {
	args := m.Called(ctx, id, embedding, model)
	return args.Error(0)
}

// MockEmbeddingJobRepository is a mock implementation of EmbeddingJobRepository
type MockEmbeddingJobRepository struct {
	mock.Mock
}

func (m *MockEmbeddingJobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbeddingClient) ModelTag() string {
	return "test/model"
}

// MockBatchEmbedder is a mock implementation of BatchEmbedder and QueryEmbedder
type MockBatchEmbedder struct {
	mock.Mock
}

func (m *MockBatchEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if fn, ok := args.Get(0).(func(context.Context, []string) [][]float32); ok {
		return fn(ctx, texts), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockBatchEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockBatchEmbedder) ModelTag() string {
	return "test/model"
}

// MockSearchRepository is a mock implementation of SearchRepository
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) LexicalSearch(ctx context.Context, query string, limit int) ([]ScoredChunk, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScoredChunk), args.Error(1)
}

func (m *MockSearchRepository) VectorSearch(ctx context.Context, embedding []float32, model string, limit int) ([]ScoredChunk, error) {
	args := m.Called(ctx, embedding, model, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScoredChunk), args.Error(1)
}

// MockSearchLogRepository is a mock implementation of SearchLogRepository
type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

// seqUUID hands out predictable, unique ids.
type seqUUID struct {
	mu sync.Mutex
	n  int
}

func (g *seqUUID) NewString() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

// fakeVectors returns one distinct vector per text.
func fakeVectors(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i + 1), 0.5, 0.25}
	}
	return out
}

const circularText = `SURAT EDARAN
NOMOR : SE/05/2022
TENTANG
PENGGUNAAN ALAT PELINDUNG DIRI

Kepada seluruh pegawai.

1. Latar Belakang
Keselamatan kerja merupakan prioritas perusahaan.
2. Maksud dan Tujuan
a. meningkatkan kepatuhan;
b. menurunkan angka kecelakaan.
3.
Ruang lingkup meliputi seluruh unit kerja.
4. Ketentuan
Seluruh pegawai wajib menggunakan APD di area kerja.

Dikeluarkan di : Jakarta
Pada tanggal : 1 Juni 2022
DIREKTUR SDM

ANI WIJAYA

Tembusan :
1. Direktur Utama
2. Arsip
`

const decreeText = `SURAT KEPUTUSAN DIREKSI PT ANGKASA
NOMOR : SKEP/12/III/2021

TENTANG
PEDOMAN REKRUTMEN PEGAWAI

Menimbang : a. bahwa diperlukan pedoman rekrutmen;
Mengingat : 1. Undang-Undang Nomor 13 Tahun 2003;
MEMUTUSKAN

BAB I
KETENTUAN UMUM

Pasal 1
Pegawai adalah pekerja tetap perusahaan.

BAB II
REKRUTMEN

Pasal 2
Rekrutmen dilakukan secara terbuka.

Ditetapkan di : Jakarta
Pada tanggal : 12 Maret 2021
DIREKTUR UTAMA

BUDI SANTOSO

LAMPIRAN KEPUTUSAN DIREKSI
Daftar formulir rekrutmen.

Kepada Yth.
1. Para Direktur
`
