package corpus

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const cacheVersion = 1

// cacheFile is the msgpack layout of an index snapshot. Only the filtered
// quotes are stored; postings are rebuilt on load.
type cacheFile struct {
	Version  int           `msgpack:"v"`
	Floor    float64       `msgpack:"f"`
	Rejected int           `msgpack:"r"`
	Quotes   []cachedQuote `msgpack:"q"`
}

type cachedQuote struct {
	Text       string   `msgpack:"x"`
	Author     string   `msgpack:"a"`
	Popularity float64  `msgpack:"p"`
	Tokens     []string `msgpack:"t"`
}

// SaveCache writes a snapshot of idx to path.
func SaveCache(path string, idx *Index) error {
	snap := cacheFile{
		Version:  cacheVersion,
		Floor:    idx.Floor(),
		Rejected: idx.Rejected(),
		Quotes:   make([]cachedQuote, 0, idx.Len()),
	}
	for _, q := range idx.Quotes() {
		snap.Quotes = append(snap.Quotes, cachedQuote{
			Text:       q.Text,
			Author:     q.Author,
			Popularity: q.Popularity,
			Tokens:     q.Tokens,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	log.Debugf("Wrote index cache %s with %d quotes", path, len(snap.Quotes))
	return nil
}

// LoadCache restores an index written by SaveCache.
func LoadCache(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	defer file.Close()

	var snap cacheFile
	if err := msgpack.NewDecoder(bufio.NewReader(file)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode cache %s: %v", ErrCorpusUnavailable, path, err)
	}
	if snap.Version != cacheVersion {
		return nil, fmt.Errorf("%w: cache %s has version %d, want %d", ErrCorpusUnavailable, path, snap.Version, cacheVersion)
	}

	idx := Build(nil, snap.Floor)
	idx.rejected = snap.Rejected
	for _, q := range snap.Quotes {
		idx.add(q.Text, q.Author, q.Popularity, q.Tokens)
	}
	return idx, nil
}
