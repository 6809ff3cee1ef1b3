package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/yomitori/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		doc_name TEXT NOT NULL,
		extracted_texts TEXT NOT NULL,
		image_names TEXT NOT NULL,
		processing_settings TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (owner_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_owner_created ON documents(owner_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// hashPassword is the account digest: a single sha256 over the raw password,
// hex-encoded, compared for equality.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateUser registers an account. UNIQUE violations on username or email are
// reported as ErrAlreadyExists rather than raw constraint errors.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, password string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, username, email, hashPassword(password), time.Now(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return "", ErrAlreadyExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Authenticate returns the user when the username and password digest match,
// or (nil, nil) when they do not.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM users WHERE username = ? AND password_hash = ?`,
		username, hashPassword(password),
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &u, nil
}

// SaveDocument inserts one immutable record. Texts, source names, and
// settings are stored as independently JSON-encoded opaque text columns.
func (s *SQLiteStore) SaveDocument(ctx context.Context, ownerID, name string, texts, names []string, settings models.ExtractionSettings) (string, error) {
	textsJSON, err := json.Marshal(texts)
	if err != nil {
		return "", fmt.Errorf("marshal texts: %w", err)
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("marshal image names: %w", err)
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, doc_name, extracted_texts, image_names, processing_settings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, name, string(textsJSON), string(namesJSON), string(settingsJSON), time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	return id, nil
}

// ListDocuments returns the owner's documents, newest first. JSON decoding
// failures surface here, at read time, not at write time.
func (s *SQLiteStore) ListDocuments(ctx context.Context, ownerID string) ([]*models.SavedDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, doc_name, extracted_texts, image_names, processing_settings, created_at
		 FROM documents WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.SavedDocument
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetDocument returns one document scoped to its owner.
func (s *SQLiteStore) GetDocument(ctx context.Context, ownerID, id string) (*models.SavedDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, doc_name, extracted_texts, image_names, processing_settings, created_at
		 FROM documents WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, err
}

func scanDocument(scan func(dest ...any) error) (*models.SavedDocument, error) {
	var doc models.SavedDocument
	var textsJSON, namesJSON, settingsJSON string
	if err := scan(&doc.ID, &doc.OwnerID, &doc.Name, &textsJSON, &namesJSON, &settingsJSON, &doc.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(textsJSON), &doc.Texts); err != nil {
		return nil, fmt.Errorf("decode texts for %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(namesJSON), &doc.Names); err != nil {
		return nil, fmt.Errorf("decode image names for %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(settingsJSON), &doc.Settings); err != nil {
		return nil, fmt.Errorf("decode settings for %s: %w", doc.ID, err)
	}
	return &doc, nil
}

// DeleteDocument removes one owned document. When id belongs to another owner
// (or does not exist), nothing happens and false is returned without error.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, ownerID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
