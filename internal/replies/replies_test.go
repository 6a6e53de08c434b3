package replies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTable(t, `{"血壓": "正常血壓為 120/80 mmHg 以下", "運動": "每週建議運動 150 分鐘"}`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	reply, ok := c.Lookup("血壓")
	assert.True(t, ok)
	assert.Equal(t, "正常血壓為 120/80 mmHg 以下", reply)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeTable(t, `{"血壓": `)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLookupMiss(t *testing.T) {
	c := FromMap(map[string]string{"血壓": "ok"})

	_, ok := c.Lookup("不存在的句子")
	assert.False(t, ok)

	_, ok = c.Lookup("")
	assert.False(t, ok)
}

func TestLookupTrimsWhitespace(t *testing.T) {
	c := FromMap(map[string]string{"血壓": "ok"})

	reply, ok := c.Lookup("  血壓 ")
	assert.True(t, ok)
	assert.Equal(t, "ok", reply)
}

func TestFromMapCopies(t *testing.T) {
	src := map[string]string{"a": "1"}
	c := FromMap(src)
	src["a"] = "mutated"

	reply, _ := c.Lookup("a")
	assert.Equal(t, "1", reply)
}

func TestEmpty(t *testing.T) {
	c := Empty()
	assert.Zero(t, c.Len())
	_, ok := c.Lookup("anything")
	assert.False(t, ok)
}
