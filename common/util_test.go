//go:build unit
// +build unit

package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestGetAsset(t *testing.T) {
	qasm, err := GetAsset("bell_pair.qasm")
	assert.Nil(t, err)
	assert.Equal(t, heredoc.Doc(`
		OPENQASM 3.0;
		include "stdgates.inc";
		qubit[2] q;
		bit[2] c;
		h q[0];
		cx q[0], q[1];
		c = measure q;
	`), qasm)
}

func TestGetAssetWithoutExtension(t *testing.T) {
	withExt, err := GetAsset("ghz.qasm")
	assert.Nil(t, err)
	withoutExt, err := GetAsset("ghz")
	assert.Nil(t, err)
	assert.Equal(t, withExt, withoutExt)
}

func TestGetAssetMissing(t *testing.T) {
	_, err := GetAsset("no_such_program.qasm")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no_such_program.qasm is not found")
}

func TestReadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setting.toml")
	assert.Nil(t, os.WriteFile(path, []byte("[run_group]\n"), 0644))

	blob, err := ReadSettingsFile(path)
	assert.Nil(t, err)
	assert.Equal(t, "[run_group]\n", blob)

	_, err = ReadSettingsFile(filepath.Join(dir, "missing.toml"))
	assert.NotNil(t, err)
}

func TestIsDirWritable(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, IsDirWritable(dir))

	assert.NotNil(t, IsDirWritable(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "file")
	assert.Nil(t, os.WriteFile(file, []byte("x"), 0644))
	assert.EqualError(t, IsDirWritable(file), file+" is not a directory")
}
