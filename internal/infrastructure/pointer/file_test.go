package pointer

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitcost/backend/internal/domain"
)

func TestFile_GetMissing(t *testing.T) {
	p := NewFile(afero.NewMemMapFs(), "/home/user/.unitcost/last_session")

	_, err := p.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoLastSession)
}

func TestFile_SetThenGet(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	p := NewFile(fs, "/home/user/.unitcost/last_session")

	require.NoError(t, p.Set(ctx, "/data/first.xml"))
	require.NoError(t, p.Set(ctx, "/data/second.xml"))

	got, err := p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/data/second.xml", got)

	raw, err := afero.ReadFile(fs, p.Path())
	require.NoError(t, err)
	assert.Equal(t, "/data/second.xml", string(raw))
}

func TestFile_BlankContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ptr", []byte("  \n"), 0o644))

	_, err := NewFile(fs, "/ptr").Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoLastSession)
}

func TestFile_TrimsTrailingNewline(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ptr", []byte("/data/s.xml\n"), 0o644))

	got, err := NewFile(fs, "/ptr").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/data/s.xml", got)
}

func TestFile_SetOnReadOnlyFs(t *testing.T) {
	p := NewFile(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/dir/ptr")

	err := p.Set(context.Background(), "/data/s.xml")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
