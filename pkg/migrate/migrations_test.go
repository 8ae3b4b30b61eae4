package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_init.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_order_notes.sql"), path)
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRefusesUsedVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	_, err := createSQLMigration(dir, "first", now)
	require.NoError(t, err)
	_, err = createSQLMigration(dir, "second", now)
	require.Error(t, err)
}

func TestMigrationName(t *testing.T) {
	cases := map[string]string{
		"Add Order Notes!":   "add_order_notes",
		"  __settings--v2  ": "settings_v2",
		"índice de pedidos":  "ndice_de_pedidos",
		"!!!":                "",
	}
	for in, want := range cases {
		require.Equal(t, want, migrationName(in), in)
	}
}

func TestListDirOrdersByVersion(t *testing.T) {
	files, err := ListDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for i := 1; i < len(files); i++ {
		require.Less(t, files[i-1].Version, files[i].Version)
	}
	require.Equal(t, "create_enum_types", files[0].Name)
}

func TestOrdersMigrationDeclaresDerivedColumnsAndCascade(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"tax_rate numeric(5,2) NOT NULL DEFAULT 10",
		"shipping_cost numeric(10,2) NOT NULL DEFAULT 5.00",
		"CONSTRAINT orders_order_number_key UNIQUE (order_number)",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"quantity integer NOT NULL CHECK (quantity >= 1)",
	} {
		require.Contains(t, content, sub)
	}
}

func TestAutoMigrateModelsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:automigrate?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrateModels(conn))

	for _, table := range []string{"users", "categories", "products", "orders", "order_items", "settings"} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
}
