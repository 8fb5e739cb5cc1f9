package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTrace(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trace.txt")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestParseLoadStoreTraceDecimalAndHex(t *testing.T) {
	path := writeTrace(t, "LD 1024\nST 0x400\n")

	entries, err := parseLoadStoreTrace(path)

	assert.NoError(t, err)
	assert.Equal(t, []loadStoreEntry{
		{isWrite: false, addr: 1024},
		{isWrite: true, addr: 1024},
	}, entries)
}

func TestParseLoadStoreTraceRejectsUnknownOp(t *testing.T) {
	path := writeTrace(t, "MOV 1024\n")

	_, err := parseLoadStoreTrace(path)

	assert.Error(t, err)
}

func TestParseLoadStoreTraceRejectsMissingFile(t *testing.T) {
	_, err := parseLoadStoreTrace(filepath.Join(t.TempDir(), "missing.txt"))

	assert.Error(t, err)
}

func TestParseReadWriteTraceAddressVectors(t *testing.T) {
	path := writeTrace(t, "R 0,1,2,3\nW 0,1,2,4\n")

	entries, err := parseReadWriteTrace(path)

	assert.NoError(t, err)
	assert.Equal(t, []readWriteEntry{
		{isWrite: false, addrVec: []int{0, 1, 2, 3}},
		{isWrite: true, addrVec: []int{0, 1, 2, 4}},
	}, entries)
}

func TestParseReadWriteTraceRejectsBadFormat(t *testing.T) {
	path := writeTrace(t, "R\n")

	_, err := parseReadWriteTrace(path)

	assert.Error(t, err)
}

func TestLoadStoreTraceRoundTripsThroughFormat(t *testing.T) {
	original := "LD 1024\nST 400\nLD 0\n"
	path := writeTrace(t, original)

	entries, err := parseLoadStoreTrace(path)
	assert.NoError(t, err)

	assert.Equal(t, original, formatLoadStoreTrace(entries))
}

func TestReadWriteTraceRoundTripsThroughFormat(t *testing.T) {
	original := "R 0,1,2,3\nW 0,1,2,4\n"
	path := writeTrace(t, original)

	entries, err := parseReadWriteTrace(path)
	assert.NoError(t, err)

	assert.Equal(t, original, formatReadWriteTrace(entries))
}
