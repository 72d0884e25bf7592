package repository

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	tests := map[string]string{
		"bare":               "root:pw@tcp(127.0.0.1:3306)/shelfmark",
		"parseTime disabled": "root:pw@tcp(db:3306)/shelfmark?parseTime=false",
		"already complete":   "root:pw@tcp(db:3306)/shelfmark?parseTime=true&clientFoundRows=true",
		"other options kept": "root:pw@tcp(db:3306)/shelfmark?charset=utf8mb4&loc=UTC",
	}

	for name, dsn := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := normalizeDSN(dsn)
			require.NoError(t, err)

			cfg, err := mysql.ParseDSN(out)
			require.NoError(t, err)
			assert.True(t, cfg.ParseTime)
			assert.True(t, cfg.ClientFoundRows)
			assert.Equal(t, "shelfmark", cfg.DBName)
		})
	}
}

func TestNormalizeDSN_KeepsParams(t *testing.T) {
	out, err := normalizeDSN("root:pw@tcp(db:3306)/shelfmark?charset=utf8mb4")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(out)
	require.NoError(t, err)
	assert.Equal(t, "utf8mb4", cfg.Params["charset"])
}

func TestNewDB_InvalidDSN(t *testing.T) {
	_, err := NewDB(context.Background(), "root:pw@tcp(db:3306)/shelfmark?parseTime=maybe")
	assert.Error(t, err)
}
