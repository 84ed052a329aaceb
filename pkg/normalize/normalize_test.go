package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input       string
		expected    string
		description string
	}{
		{"Hello World", "hello world", "Lowercase"},
		{"  padded\t\tinput \n", "padded input", "Trim and collapse whitespace"},
		{"It’s “quoted”", "it's \"quoted\"", "Curly quotes to straight"},
		{"café au lait", "caf au lait", "Non-ASCII stripped"},
		{"", "", "Empty input"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestTokensDropsStopWordsAndPunctuation(t *testing.T) {
	tokens := Tokens("The only thing we have to fear is fear itself.")
	assert.Equal(t, []string{"only", "thing", "we", "have", "fear", "fear", "itself"}, tokens)
}

func TestTokensJoinsHyphenatedWords(t *testing.T) {
	tokens := Tokens("Spaghetti swims in solar-powered bicycles.")
	assert.Equal(t, []string{"spaghetti", "swims", "solarpowered", "bicycles"}, tokens)
}

func TestWordsKeepStopWords(t *testing.T) {
	phrase := "The Right to Bear Burritos Shall Not Be Infringed"

	assert.Equal(t, 9, WordCount(phrase))
	assert.Less(t, len(Tokens(phrase)), WordCount(phrase))
}

func TestWordsSplitOnSymbols(t *testing.T) {
	assert.Equal(t, []string{"correct", "horse", "battery", "staple"}, Words("correct-horse_battery...staple!"))
	assert.Equal(t, 0, WordCount("  --- !! "))
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.False(t, IsStopWord("The"))
	assert.False(t, IsStopWord("burrito"))
	assert.Len(t, StopWords(), 20)
}
