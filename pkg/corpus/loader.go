package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Load reads the corpus at path and builds an index from it. Any read or
// parse failure is wrapped with ErrCorpusUnavailable.
func Load(path string, floor float64) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no corpus path given", ErrCorpusUnavailable)
	}

	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	log.Debugf("Loading corpus %s as %s", path, format)

	if format == FormatCache {
		idx, err := LoadCache(path)
		if err != nil {
			return nil, err
		}
		return refilter(idx, floor)
	}

	records, err := ReadRecords(path, format)
	if err != nil {
		return nil, err
	}
	return Build(records, floor), nil
}

// refilter applies floor to an index restored from a cache. A cache only
// holds quotes above its own floor, so a lower floor cannot be served.
func refilter(idx *Index, floor float64) (*Index, error) {
	switch {
	case floor == idx.Floor():
		return idx, nil
	case floor < idx.Floor():
		return nil, fmt.Errorf("%w: index cache was built with floor %v, cannot serve lower floor %v",
			ErrCorpusUnavailable, idx.Floor(), floor)
	}

	quotes := idx.Quotes()
	records := make([]Record, 0, len(quotes))
	for _, q := range quotes {
		records = append(records, Record{Text: q.Text, Author: q.Author, Popularity: q.Popularity})
	}
	filtered := Build(records, floor)
	filtered.rejected = idx.Rejected()
	log.Debugf("Re-filtered cached index from floor %v to %v: %d of %d quotes kept", idx.Floor(), floor, filtered.Len(), len(quotes))
	return filtered, nil
}

// LoadWithCache loads from cachePath when the cache is newer than the source
// and was built with the same floor. Otherwise it loads the source and
// refreshes the cache. Cache failures are logged, never returned.
func LoadWithCache(path, cachePath string, floor float64) (*Index, error) {
	if cachePath == "" {
		return Load(path, floor)
	}

	if fresh(path, cachePath) {
		idx, err := LoadCache(cachePath)
		if err == nil && idx.Floor() == floor {
			log.Debugf("Using index cache %s", cachePath)
			return idx, nil
		}
		if err != nil {
			log.Warnf("Ignoring index cache %s: %v", cachePath, err)
		}
	}

	idx, err := Load(path, floor)
	if err != nil {
		return nil, err
	}
	if err := SaveCache(cachePath, idx); err != nil {
		log.Warnf("Failed to write index cache %s: %v", cachePath, err)
	}
	return idx, nil
}

// fresh reports whether cachePath exists and is not older than path.
func fresh(path, cachePath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	srcInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !cacheInfo.ModTime().Before(srcInfo.ModTime())
}

// ReadRecords decodes every record of a JSON or SQLite source.
func ReadRecords(path string, format FileFormat) ([]Record, error) {
	switch format {
	case FormatJSON:
		return readJSON(path)
	case FormatSQLite:
		return ReadSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %s holds no records", ErrCorpusUnavailable, format)
	}
}

func readJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCorpusUnavailable, path, err)
	}
	return records, nil
}
