package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold("the SOW mentions LIABILITY", "liability"))
	assert.True(t, containsFold("Straße und Ökologie", "ÖKOLOGIE"))
	assert.True(t, containsFold("anything", ""))
	assert.False(t, containsFold("Data Privacy", "privacy policy"))

	// literal match: regex metacharacters carry no meaning
	assert.True(t, containsFold("fees (USD) apply", "(usd)"))
	assert.False(t, containsFold("fees USD apply", "(usd)"))
	assert.True(t, containsFold("uptime 99.9%", "99.9%"))
	assert.False(t, containsFold("uptime 9909%", "99.9%"))
}

func TestIndexAllFold(t *testing.T) {
	assert.Equal(t, []span{{0, 3}, {8, 11}}, indexAllFold("Foo bar FOO", "foo"))
	assert.Equal(t, []span{{0, 2}, {2, 4}}, indexAllFold("aaaaa", "aa"), "matches do not overlap")
	assert.Nil(t, indexAllFold("text", ""))
	assert.Nil(t, indexAllFold("text", "other"))

	s := "héllo HÉLLO"
	spans := indexAllFold(s, "héllo")
	assert.Len(t, spans, 2)
	assert.Equal(t, "HÉLLO", s[spans[1].start:spans[1].end])
}

func TestLineAt(t *testing.T) {
	s := "one\ntwo\nthree"
	assert.Equal(t, 1, lineAt(s, 0))
	assert.Equal(t, 2, lineAt(s, 4))
	assert.Equal(t, 3, lineAt(s, len(s)-1))
}

func TestContextWindow(t *testing.T) {
	s := "0123456789TERM0123456789"
	assert.Equal(t, "...56789TERM01234...", contextWindow(s, 10, 14, 5))
	assert.Equal(t, "..."+s+"...", contextWindow(s, 10, 14, 50))

	// counts characters, not bytes
	u := "ééééTERMéééé"
	assert.Equal(t, "...éTERMé...", contextWindow(u, 8, 12, 1))
}
