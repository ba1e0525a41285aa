package zlog

import (
	"gotest.tools/assert"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_FileSink(t *testing.T) {
	defer func() { assert.NilError(t, Configure(DefaultConfig(false))) }()
	path := filepath.Join(t.TempDir(), "ordinal.log")
	l := Get("test")
	assert.Assert(t, Get("test") == l)

	assert.NilError(t, Configure(Config{Level: "info", Path: path}))
	assert.Equal(t, Current().Path, path)
	l.Debugf("hidden %d", 1)
	l.Infof("visible %d", 2)
	assert.NilError(t, l.Sync())

	files, err := filepath.Glob(path + ".*")
	assert.NilError(t, err)
	assert.Assert(t, len(files) == 1, "%v", files)
	bs, err := os.ReadFile(files[0])
	assert.NilError(t, err)
	text := string(bs)
	assert.Assert(t, strings.Contains(text, "[INFO]"))
	assert.Assert(t, strings.Contains(text, "visible 2"))
	assert.Assert(t, strings.Contains(text, "test"))
	assert.Assert(t, !strings.Contains(text, "hidden"))
}

func Test_BadLevel(t *testing.T) {
	err := Configure(Config{Level: "loud", Console: true})
	assert.ErrorContains(t, err, "bad log level")
	assert.Assert(t, Current().Level != "loud")
}

func Test_Defaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(true).Level, "debug")
	assert.Equal(t, DefaultConfig(false).Level, "warn")
	l, err := Config{}.level()
	assert.NilError(t, err)
	assert.Equal(t, l.String(), "warn")
}
