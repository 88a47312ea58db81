package service

import "context"

type testTxRepos struct {
	documents     DocumentRepository
	sections      SectionRepository
	chunks        ChunkRepository
	embeddingJobs EmbeddingJobRepository
}

func (t *testTxRepos) Documents() DocumentRepository {
	return t.documents
}

func (t *testTxRepos) Sections() SectionRepository {
	return t.sections
}

func (t *testTxRepos) Chunks() ChunkRepository {
	return t.chunks
}

func (t *testTxRepos) EmbeddingJobs() EmbeddingJobRepository {
	return t.embeddingJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
