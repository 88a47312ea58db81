//go:build integration

package openai

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_GenerateEmbeddings_RealAPI(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	client := NewClient(apiKey)
	ctx := context.Background()

	vectors, err := client.GenerateEmbeddings(ctx, []string{
		"Surat Edaran tentang penggunaan alat pelindung diri.",
		"Pasal 3 mengatur kewajiban pegawai.",
	})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], DefaultEmbeddingDimensions)
}
