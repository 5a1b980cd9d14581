package zones

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jonas-p/go-shp"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range schemaStatements {
		mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, NewImporter(mock).EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE").WillReturnError(assert.AnError)

	err = NewImporter(mock).EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure schema")
}

func TestImport_Points(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ds := poiDataset(t)
	mock.ExpectCopyFrom(pgx.Identifier{"pois"}, ds.Columns()).
		WillReturnResult(3)

	n, err := NewImporter(mock).Import(context.Background(), ds, writePoiShapefile(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_EmptyShapefile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	path := filepath.Join(t.TempDir(), "empty.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 10)}))
	w.Close()

	// No COPY is issued for an empty file.
	n, err := NewImporter(mock).Import(context.Background(), poiDataset(t), path)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ds := poiDataset(t)
	mock.ExpectCopyFrom(pgx.Identifier{"pois"}, ds.Columns()).
		WillReturnError(assert.AnError)

	_, err = NewImporter(mock).Import(context.Background(), ds, writePoiShapefile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load pois")
}

func TestImport_MissingFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewImporter(mock).Import(context.Background(), poiDataset(t), "/does/not/exist.shp")
	require.Error(t, err)
}
