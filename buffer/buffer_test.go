package buffer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/pprt/grammar"
	. "github.com/ava12/pprt/internal/test"
	"github.com/ava12/pprt/lexer"
	"github.com/ava12/pprt/source"
)

const sampleText = "a b c d e f g h i"

func sampleTokens() []*lexer.Token {
	var result []*lexer.Token
	for i, w := range strings.Fields(sampleText) {
		result = append(result, lexer.NewToken("word", w, i*2, lexer.Regular, nil))
	}
	return append(result, lexer.EoiToken(nil, len(sampleText)))
}

type producer struct {
	name string
	make func(t *testing.T) *Buffer
}

func producers() []producer {
	return []producer{
		{"slice", func(t *testing.T) *Buffer {
			b, e := FromSlice(sampleTokens())
			require.NoError(t, e)
			return b
		}},
		{"func", func(t *testing.T) *Buffer {
			tokens := sampleTokens()
			i := 0
			b, e := FromFunc(func() (*lexer.Token, error) {
				if i >= len(tokens) {
					return nil, nil
				}
				i++
				return tokens[i-1], nil
			})
			require.NoError(t, e)
			return b
		}},
		{"lexer", func(t *testing.T) *Buffer {
			g := &grammar.Grammar{
				States: []grammar.State{{Name: "default", Tokens: []grammar.Token{{"space", `\s+`}, {"word", `\w+`}}}},
				Skip:   []string{"space"},
			}
			l, e := lexer.New(g, nil)
			require.NoError(t, e)
			b, e := New(l.Lex(source.FromString("", sampleText)))
			require.NoError(t, e)
			return b
		}},
	}
}

type tokenView struct {
	name, text string
	offset     int
}

func view(t *lexer.Token) tokenView {
	return tokenView{t.Name(), t.Text(), t.Offset()}
}

func collect(t *testing.T, b *Buffer) []tokenView {
	var result []tokenView
	for b.Valid() {
		result = append(result, view(b.Current()))
		require.NoError(t, b.Next())
	}
	return result
}

func TestIteration(t *testing.T) {
	var expected []tokenView
	for _, tok := range sampleTokens() {
		expected = append(expected, view(tok))
	}

	for _, p := range producers() {
		t.Run(p.name, func(t *testing.T) {
			b := p.make(t)
			assert.Equal(t, expected, collect(t, b))
			assert.False(t, b.Valid())
			assert.Nil(t, b.Current())

			require.NoError(t, b.Rewind())
			assert.Equal(t, 0, b.Key())
			assert.Equal(t, expected, collect(t, b))
		})
	}
}

func TestSeek(t *testing.T) {
	expected := sampleTokens()
	for _, p := range producers() {
		t.Run(p.name, func(t *testing.T) {
			b := p.make(t)
			for _, i := range []int{3, 0, 9, 5, 5, 1} {
				require.NoError(t, b.Seek(i))
				assert.Equal(t, i, b.Key())
				assert.Equal(t, view(expected[i]), view(b.Current()))
			}

			require.NoError(t, b.Seek(4))
			require.NoError(t, b.Rewind())
			assert.Equal(t, 0, b.Key())
			assert.Equal(t, view(expected[0]), view(b.Current()))
		})
	}
}

func TestSeekOutOfRange(t *testing.T) {
	for _, p := range producers() {
		t.Run(p.name, func(t *testing.T) {
			b := p.make(t)
			require.NoError(t, b.Seek(2))
			l := len(sampleTokens())

			for _, i := range []int{-1, l, l + 1000} {
				ExpectErrorCode(t, OutOfRangeError, b.Seek(i))
				assert.Equal(t, 2, b.Key())
			}
			assert.Equal(t, l, b.Len())
		})
	}
}

func TestNextPastEnd(t *testing.T) {
	b, e := FromSlice(sampleTokens()[:2])
	require.NoError(t, e)
	require.NoError(t, b.Next())
	require.NoError(t, b.Next())
	assert.False(t, b.Valid())
	ExpectErrorCode(t, OutOfRangeError, b.Next())
}

func TestLazyRealization(t *testing.T) {
	tokens := sampleTokens()
	pulled := 0
	b, e := FromFunc(func() (*lexer.Token, error) {
		if pulled >= len(tokens) {
			return nil, nil
		}
		pulled++
		return tokens[pulled-1], nil
	})
	require.NoError(t, e)
	assert.Equal(t, 1, pulled)

	require.NoError(t, b.Seek(4))
	assert.Equal(t, 5, pulled)
	require.NoError(t, b.Seek(1))
	assert.Equal(t, 5, pulled)
}

func TestSourceError(t *testing.T) {
	failure := errors.New("broken source")
	tokens := sampleTokens()
	i := 0
	b, e := FromFunc(func() (*lexer.Token, error) {
		if i == 3 {
			return nil, failure
		}
		i++
		return tokens[i-1], nil
	})
	require.NoError(t, e)
	assert.ErrorIs(t, b.Seek(5), failure)
	assert.Equal(t, 0, b.Key())
}

func TestEmptySource(t *testing.T) {
	b, e := FromSlice(nil)
	require.NoError(t, e)
	assert.False(t, b.Valid())
	assert.Equal(t, 0, b.Len())
	ExpectErrorCode(t, OutOfRangeError, b.Rewind())
}

func TestHorizon(t *testing.T) {
	b, e := FromSlice(sampleTokens(), WithHorizon(2))
	require.NoError(t, e)

	for i := 0; i < 6; i++ {
		require.NoError(t, b.Next())
	}
	assert.Equal(t, 6, b.Key())
	require.NoError(t, b.Seek(4))
	assert.Equal(t, "e", b.Current().Text())

	e = b.Seek(3)
	ExpectErrorCode(t, EvictedError, e)
	assert.Equal(t, 4, b.Key())

	require.NoError(t, b.Seek(9))
	assert.True(t, b.Current().IsEoi())
	ExpectErrorCode(t, EvictedError, b.Rewind())
}

func TestTenTokens(t *testing.T) {
	tokens := make([]*lexer.Token, 10)
	for i := range tokens {
		tokens[i] = lexer.NewToken("n", fmt.Sprint(i), i, lexer.Regular, nil)
	}
	b, e := FromSlice(tokens)
	require.NoError(t, e)
	ExpectErrorCode(t, OutOfRangeError, b.Seek(len(tokens)+1000))
}
