package namedb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// LoadSQLite builds a Set from a sqlite database with a table
//
//	names(category TEXT, idx INTEGER, name TEXT)
//
// where category is one of the Category strings. Unknown categories and
// empty names are ignored, like gaps in the text databases.
func LoadSQLite(path string) (*Set, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open name db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT category, idx, name FROM names ORDER BY category, idx`)
	if err != nil {
		return nil, fmt.Errorf("query name db: %w", err)
	}
	defer rows.Close()

	known := make(map[Category]bool, len(Categories))
	for _, cat := range Categories {
		known[cat] = true
	}

	loaded := map[Category]*DB{}
	for rows.Next() {
		var (
			category string
			idx      int64
			name     string
		)
		if err := rows.Scan(&category, &idx, &name); err != nil {
			return nil, fmt.Errorf("scan name db row: %w", err)
		}
		cat := Category(category)
		if !known[cat] || idx < 0 || name == "" {
			continue
		}
		d := loaded[cat]
		if d == nil {
			d = &DB{}
			loaded[cat] = d
		}
		for int64(len(d.names)) <= idx {
			d.names = append(d.names, "")
		}
		d.names[idx] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read name db: %w", err)
	}

	s := Defaults()
	for cat, d := range loaded {
		s.dbs[cat] = d
	}
	return s, nil
}
