package privacy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskIsStableAndKeyed(t *testing.T) {
	p := NewPseudonymizer("secret-a")
	q := NewPseudonymizer("secret-b")

	first := p.Mask("1BI21CS001")
	assert.Equal(t, first, p.Mask("1BI21CS001"))
	assert.NotEqual(t, first, p.Mask("1BI21CS002"))
	assert.NotEqual(t, first, q.Mask("1BI21CS001"))
	assert.True(t, strings.HasPrefix(first, "anon-"))
	assert.NotContains(t, first, "1BI21CS001")
}

func TestMaskEmptyAndLongKey(t *testing.T) {
	p := NewPseudonymizer(strings.Repeat("k", 200))

	assert.Equal(t, "", p.Mask(""))
	assert.Len(t, p.Mask("PSYCH-1001"), len("anon-")+pseudonymBytes*2)
}
