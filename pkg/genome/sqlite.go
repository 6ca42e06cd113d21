package genome

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// LoadSQLite reads genome_info(genome_id, percent_completion,
// percent_redundancy, total_length). NULL columns stay unset.
func LoadSQLite(ctx context.Context, db *sql.DB) (*Table, error) {
	const q = `
		SELECT genome_id, percent_completion, percent_redundancy, total_length
		FROM genome_info
		ORDER BY rowid
	`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("LoadSQLite: query failed: %w", err)
	}
	defer rows.Close()

	t := NewTable()
	for rows.Next() {
		var g Genome
		if err := rows.Scan(&g.Name, &g.PercentCompletion, &g.PercentRedundancy, &g.TotalLength); err != nil {
			return nil, fmt.Errorf("LoadSQLite: scan failed: %w", err)
		}
		if err := t.Add(g); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadSQLite: %w", err)
	}
	return t, nil
}

// OpenSQLite opens a genome database with the modernc driver.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}
