package corpus

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the corpus source formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // JSON array of records
	FormatSQLite             // SQLite database with a quotes table
	FormatCache              // msgpack index snapshot
)

// FormatInfo contains metadata about a corpus file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var sqliteMagic = []byte("SQLite format 3\x00")

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Quote Corpus",
		Extensions:  []string{".json"},
		MinSize:     2, // "[]"
	},
	FormatSQLite: {
		Format:      FormatSQLite,
		Description: "SQLite Quote Corpus",
		Extensions:  []string{".db", ".sqlite", ".sqlite3"},
		MinSize:     int64(len(sqliteMagic)),
	},
	FormatCache: {
		Format:      FormatCache,
		Description: "Msgpack Index Cache",
		Extensions:  []string{".msgpack", ".idx"},
		MinSize:     1,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if expectedFormat == FormatSQLite {
		return validateSQLiteHeader(filename)
	}
	return nil
}

// validateSQLiteHeader checks the 16 byte SQLite magic string.
func validateSQLiteHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if !bytes.Equal(header, sqliteMagic) {
		return fmt.Errorf("file %s is not a SQLite database", filename)
	}
	log.Debugf("SQLite file %s validated", filename)
	return nil
}

// DetectFileFormat picks a format by extension, then by sniffing the SQLite
// header for files with an unrecognized extension.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := ValidateFileFormat(filename, format); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}

	if err := ValidateFileFormat(filename, FormatSQLite); err == nil {
		return FormatSQLite, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}
