//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunner_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)
	docs := NewDocumentRepository(pool)

	committed := newDocument("commit.txt", domain.DocumentStatusIndexed)
	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		return repos.Documents().Create(ctx, committed)
	})
	require.NoError(t, err)
	_, err = docs.GetByID(ctx, committed.ID)
	require.NoError(t, err)

	rolledBack := newDocument("rollback.txt", domain.DocumentStatusIndexed)
	boom := errors.New("boom")
	err = runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Documents().Create(ctx, rolledBack); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = docs.GetByID(ctx, rolledBack.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
