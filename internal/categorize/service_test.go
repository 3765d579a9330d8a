package categorize_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	"github.com/MrJamesThe3rd/fiado/internal/categorize/store"
	"github.com/MrJamesThe3rd/fiado/internal/database"
)

func newService(t *testing.T) *categorize.Service {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "fiado.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return categorize.NewService(store.New(db))
}

func TestService_SuggestLongestPatternWins(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Learn(ctx, "luz", "Servicios"))
	require.NoError(t, svc.Learn(ctx, "  Boleta   LUZ ", "Electricidad"))
	require.NoError(t, svc.Learn(ctx, "bolsas", "Insumos"))

	tests := []struct {
		description string
		want        string
	}{
		{description: "Pago boleta luz marzo", want: "Electricidad"},
		{description: "LUZ del local", want: "Servicios"},
		{description: "Bolsas plásticas", want: "Insumos"},
		{description: "Arriendo", want: ""},
		{description: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, err := svc.Suggest(ctx, tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_LearnReplaces(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Learn(ctx, "gas", "Servicios"))
	require.NoError(t, svc.Learn(ctx, "GAS", "Combustible"))

	got, err := svc.Suggest(ctx, "balón de gas")
	require.NoError(t, err)
	assert.Equal(t, "Combustible", got)
}

func TestService_LearnRequiresBoth(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Learn(ctx, " ", "Servicios"), categorize.ErrEmpty)
	assert.ErrorIs(t, svc.Learn(ctx, "gas", ""), categorize.ErrEmpty)
}
