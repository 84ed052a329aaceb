package corpus

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SchemaSQL is the layout of a SQLite corpus. tokens holds a JSON array.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS quotes (
    id INTEGER PRIMARY KEY,
    text TEXT NOT NULL,
    author TEXT,
    popularity REAL NOT NULL DEFAULT 0,
    tokens TEXT
);
`

// OpenDB opens a SQLite corpus and applies the schema.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// ReadSQLite returns the records of the quotes table in id order.
func ReadSQLite(path string) ([]Record, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT text, COALESCE(author, ''), popularity, COALESCE(tokens, '') FROM quotes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query quotes: %v", ErrCorpusUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var tokens string
		if err := rows.Scan(&r.Text, &r.Author, &r.Popularity, &tokens); err != nil {
			return nil, fmt.Errorf("%w: scan quote: %v", ErrCorpusUnavailable, err)
		}
		if tokens != "" {
			if err := json.Unmarshal([]byte(tokens), &r.Tokens); err != nil {
				return nil, fmt.Errorf("%w: decode tokens of quote %d: %v", ErrCorpusUnavailable, len(records), err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	return records, nil
}

// WriteSQLite replaces the contents of the quotes table with records.
func WriteSQLite(path string, records []Record) error {
	db, err := OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM quotes`); err != nil {
		return fmt.Errorf("clear quotes: %w", err)
	}
	for i, r := range records {
		tokens, err := json.Marshal(r.Tokens)
		if err != nil {
			return fmt.Errorf("encode tokens of quote %d: %w", i, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO quotes(id, text, author, popularity, tokens) VALUES(?,?,?,?,?)`,
			i, r.Text, r.Author, r.Popularity, string(tokens),
		); err != nil {
			return fmt.Errorf("insert quote %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
