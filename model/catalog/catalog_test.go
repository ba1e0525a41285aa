package catalog

import (
	"gotest.tools/assert"
	"testing"
)

func Test_Table(t *testing.T) {
	assert.DeepEqual(t, Table().Names(), []string{"nnpom", "svorex"})
	for _, n := range Table().Names() {
		s, err := New(n)
		assert.NilError(t, err)
		assert.Equal(t, s.Name(), n)
	}
	_, err := New("svm")
	assert.ErrorContains(t, err, "unknown solver `svm`")
}
