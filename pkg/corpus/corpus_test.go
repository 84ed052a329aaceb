package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testRecords = []Record{
	{Text: "The only thing we have to fear is fear itself.", Author: "Franklin D. Roosevelt", Popularity: 0.9},
	{Text: "Fortune favors the bold.", Author: "Virgil", Popularity: 0.5},
	{Text: "An obscure line nobody remembers.", Author: "Nobody", Popularity: 0.01},
	{Text: "Stay hungry, stay foolish.", Author: "Steve Jobs", Popularity: 0.7},
	{Text: "", Author: "Broken", Popularity: 0.5},
	{Text: "Too popular to be true.", Author: "Broken", Popularity: 1.5},
}

func TestBuildFiltersAndAssignsIDs(t *testing.T) {
	idx := Build(testRecords, DefaultPopularityFloor)

	require.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, idx.Rejected())

	q, ok := idx.Quote(2)
	require.True(t, ok)
	assert.Equal(t, 2, q.ID)
	assert.Equal(t, "Steve Jobs", q.Author)
	assert.Equal(t, []string{"stay", "hungry", "stay", "foolish"}, q.Tokens)

	_, ok = idx.Quote(3)
	assert.False(t, ok)
}

func TestPostingsDeduplicateWithinQuote(t *testing.T) {
	idx := Build(testRecords, DefaultPopularityFloor)

	assert.Equal(t, []int{0}, idx.Postings("fear"))
	assert.Equal(t, []int{2}, idx.Postings("stay"))
	assert.Nil(t, idx.Postings("the"), "stop words are never indexed")
	assert.Nil(t, idx.Postings("missing"))
}

func TestCandidatesAscendingUnion(t *testing.T) {
	idx := Build([]Record{
		{Text: "red fish blue fish", Popularity: 0.5},
		{Text: "one fish", Popularity: 0.5},
		{Text: "green eggs", Popularity: 0.5},
		{Text: "blue moon", Popularity: 0.5},
	}, 0)

	assert.Equal(t, []int{0, 1, 3}, idx.Candidates([]string{"moon", "fish", "unknown"}))
	assert.Nil(t, idx.Candidates(nil))
	assert.Nil(t, idx.Candidates([]string{"unknown"}))
}

func TestQuoteReturnsCopy(t *testing.T) {
	idx := Build(testRecords, DefaultPopularityFloor)

	q, _ := idx.Quote(0)
	q.Tokens[0] = "mutated"

	again, _ := idx.Quote(0)
	assert.Equal(t, "only", again.Tokens[0])
}

func TestNilIndexIsEmpty(t *testing.T) {
	var idx *Index

	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Candidates([]string{"fear"}))
	assert.Nil(t, idx.Postings("fear"))
	assert.Empty(t, idx.TokensWithPrefix("f", 0))
}

func TestTokensWithPrefix(t *testing.T) {
	idx := Build(testRecords, DefaultPopularityFloor)

	got := idx.TokensWithPrefix("fo", 0)
	assert.Equal(t, map[string]int{"fortune": 1, "foolish": 1}, got)
	assert.Len(t, idx.TokensWithPrefix("", 2), 2)
}

func writeJSON(t *testing.T, records []Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotes.json")
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeJSON(t, testRecords)

	idx, err := Load(path, DefaultPopularityFloor)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.db")
	require.NoError(t, WriteSQLite(path, testRecords[:4]))

	format, err := DetectFileFormat(path)
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, format)

	idx, err := Load(path, DefaultPopularityFloor)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	q, _ := idx.Quote(1)
	assert.Equal(t, "Fortune favors the bold.", q.Text)
}

func TestLoadFailuresAreCorpusUnavailable(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	unknown := filepath.Join(dir, "quotes.csv")
	require.NoError(t, os.WriteFile(unknown, []byte("text,author"), 0644))

	for _, path := range []string{"", filepath.Join(dir, "missing.json"), bad, unknown} {
		_, err := Load(path, DefaultPopularityFloor)
		assert.ErrorIs(t, err, ErrCorpusUnavailable, path)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	idx := Build(testRecords, DefaultPopularityFloor)
	path := filepath.Join(t.TempDir(), "index.msgpack")

	require.NoError(t, SaveCache(path, idx))
	restored, err := LoadCache(path)
	require.NoError(t, err)

	assert.Equal(t, idx.Quotes(), restored.Quotes())
	assert.Equal(t, idx.Rejected(), restored.Rejected())
	assert.Equal(t, idx.VocabularySize(), restored.VocabularySize())
	assert.Equal(t, idx.Postings("fear"), restored.Postings("fear"))
}

func TestLoadWithCacheRefreshesStaleCache(t *testing.T) {
	src := writeJSON(t, testRecords)
	cachePath := filepath.Join(t.TempDir(), "index.msgpack")

	idx, err := LoadWithCache(src, cachePath, DefaultPopularityFloor)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())
	require.FileExists(t, cachePath)

	// newer source invalidates the cache
	data, err := json.Marshal(testRecords[:2])
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))

	idx, err = LoadWithCache(src, cachePath, DefaultPopularityFloor)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
}

func TestLoadCacheAppliesRequestedFloor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.msgpack")
	require.NoError(t, SaveCache(path, Build(testRecords, DefaultPopularityFloor)))

	same, err := Load(path, DefaultPopularityFloor)
	require.NoError(t, err)
	assert.Equal(t, 3, same.Len())

	higher, err := Load(path, 0.6)
	require.NoError(t, err)
	assert.Equal(t, 2, higher.Len())
	assert.Equal(t, 0.6, higher.Floor())
	assert.Equal(t, 2, higher.Rejected())
	assert.Empty(t, higher.Postings("fortune"))
	assert.Equal(t, []int{1}, higher.Postings("stay"))
	for _, q := range higher.Quotes() {
		assert.Greater(t, q.Popularity, 0.6)
	}

	_, err = Load(path, 0.001)
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
}

func TestLoadBundledCorpus(t *testing.T) {
	idx, err := Load(filepath.Join("..", "..", "data", "quotes.json"), DefaultPopularityFloor)
	require.NoError(t, err)

	assert.Equal(t, 226, idx.Len())
	assert.Zero(t, idx.Rejected())
	assert.NotEmpty(t, idx.Postings("force"))
}
