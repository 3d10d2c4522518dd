package explorer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/libs/log"
)

const testSchema = "type Query {\n  status: Status!\n}\n"

func writeSchema(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestCompareSchemaIdentical(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "actual.graphql")
	expected := filepath.Join(dir, "expected.graphql")
	writeSchema(t, actual, testSchema)
	writeSchema(t, expected, testSchema)
	before, err := os.Stat(expected)
	require.NoError(t, err)

	var buf bytes.Buffer
	drift, err := CompareSchemaWith(log.MustNewLogger(&buf, log.LogFormatJSON, log.LogLevelInfo), actual, expected)
	require.NoError(t, err)
	assert.False(t, drift)
	assert.NotContains(t, buf.String(), "schema changed")

	after, err := os.Stat(expected)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestCompareSchemaDrift(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "actual.graphql")
	expected := filepath.Join(dir, "expected.graphql")
	writeSchema(t, actual, testSchema)
	writeSchema(t, expected, testSchema[:len(testSchema)-2]+"?\n")

	var buf bytes.Buffer
	logger := log.MustNewLogger(&buf, log.LogFormatJSON, log.LogLevelInfo)
	drift, err := CompareSchemaWith(logger, actual, expected)
	require.NoError(t, err)
	assert.True(t, drift)
	assert.Contains(t, buf.String(), "schema changed")

	got, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Equal(t, testSchema, string(got))

	drift, err = CompareSchemaWith(logger, actual, expected)
	require.NoError(t, err)
	assert.False(t, drift)
}

func TestCompareSchemaMissingExpected(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "actual.graphql")
	expected := filepath.Join(dir, "resources", "schema.graphql")
	writeSchema(t, actual, testSchema)

	drift, err := CompareSchemaWith(log.NewNopLogger(), actual, expected)
	require.NoError(t, err)
	assert.True(t, drift)
	assert.FileExists(t, expected)
}

func TestCompareSchemaMissingActual(t *testing.T) {
	dir := t.TempDir()
	_, err := CompareSchemaWith(log.NewNopLogger(), filepath.Join(dir, "nope"), filepath.Join(dir, "expected"))
	assert.Error(t, err)
}

func TestCheckedInSchemaExists(t *testing.T) {
	assert.Equal(t, config.DefaultSchemaConfig().Expected, ExpectedSchemaPath)
	assert.FileExists(t, filepath.Join("..", "..", ExpectedSchemaPath))
}
