package document

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// projectDB is the SQLite project database holding persisted documents.
// One row per document; payloads are the documents' own binary encodings.
type projectDB struct {
	db *sql.DB
}

const projectSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

func openProjectDB(path string) (*projectDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single editing thread; one connection avoids writer contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(projectSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &projectDB{db: db}, nil
}

func (p *projectDB) close() error {
	return p.db.Close()
}

func (p *projectDB) load(id string) ([]byte, bool, error) {
	var data []byte
	err := p.db.QueryRow(`SELECT data FROM documents WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (p *projectDB) listIDs() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *projectDB) save(id, kind string, data []byte) error {
	_, err := p.db.Exec(`
		INSERT INTO documents (id, kind, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		id, kind, data, time.Now().UTC().Format(time.RFC3339))
	return err
}
