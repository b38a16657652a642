// Package store persists the local issue mirror and per-project sync state
// in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/termlink/issuemirror/internal/entity"
	"github.com/termlink/issuemirror/internal/mirror"
	"github.com/termlink/issuemirror/pkg/models"
)

// Store wraps the sqlite database holding mirrored issues, their derived
// mention sets, and the sync-state records.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at the given path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the schema if it doesn't exist.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS issues (
		node_id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		number INTEGER NOT NULL,
		title TEXT NOT NULL,
		body TEXT,
		state TEXT NOT NULL,
		html_url TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		closed_at DATETIME,
		labels TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_issues_repo ON issues(owner, repo);

	CREATE TABLE IF NOT EXISTS obo_mentions (
		node_id TEXT NOT NULL,
		obo_id TEXT NOT NULL,
		PRIMARY KEY (node_id, obo_id)
	);

	CREATE TABLE IF NOT EXISTS iri_mentions (
		node_id TEXT NOT NULL,
		iri TEXT NOT NULL,
		PRIMARY KEY (node_id, iri)
	);

	CREATE TABLE IF NOT EXISTS sync_state (
		project_id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		state TEXT NOT NULL,
		updated_at DATETIME
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveAll inserts or replaces mirrored issue records along with their
// mention rows, in one transaction.
func (s *Store) SaveAll(ctx context.Context, records []mirror.IssueRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		labels, err := json.Marshal(record.Issue.Labels)
		if err != nil {
			return fmt.Errorf("failed to encode labels for issue %s: %w", record.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO issues
			(node_id, owner, repo, number, title, body, state, html_url, created_at, updated_at, closed_at, labels)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID,
			record.RepoCoords.Owner,
			record.RepoCoords.Name,
			record.Issue.Number,
			record.Issue.Title,
			record.Issue.Body,
			record.Issue.State,
			record.Issue.HTMLURL,
			record.Issue.CreatedAt,
			record.Issue.UpdatedAt,
			record.Issue.ClosedAt,
			string(labels),
		)
		if err != nil {
			return fmt.Errorf("failed to save issue %s: %w", record.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM obo_mentions WHERE node_id = ?`, record.ID); err != nil {
			return fmt.Errorf("failed to clear obo mentions for issue %s: %w", record.ID, err)
		}
		for _, oboID := range record.OboIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO obo_mentions (node_id, obo_id) VALUES (?, ?)`,
				record.ID, string(oboID)); err != nil {
				return fmt.Errorf("failed to save obo mention for issue %s: %w", record.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM iri_mentions WHERE node_id = ?`, record.ID); err != nil {
			return fmt.Errorf("failed to clear iri mentions for issue %s: %w", record.ID, err)
		}
		for _, iri := range record.IRIs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO iri_mentions (node_id, iri) VALUES (?, ?)`,
				record.ID, string(iri)); err != nil {
				return fmt.Errorf("failed to save iri mention for issue %s: %w", record.ID, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteAllByRepo removes every mirrored record under the repository
// partition, including mention rows.
func (s *Store) DeleteAllByRepo(ctx context.Context, coords models.RepoCoordinates) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM obo_mentions WHERE node_id IN
		(SELECT node_id FROM issues WHERE owner = ? AND repo = ?)`,
		coords.Owner, coords.Name)
	if err != nil {
		return fmt.Errorf("failed to delete obo mentions for %s: %w", coords.FullName(), err)
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM iri_mentions WHERE node_id IN
		(SELECT node_id FROM issues WHERE owner = ? AND repo = ?)`,
		coords.Owner, coords.Name)
	if err != nil {
		return fmt.Errorf("failed to delete iri mentions for %s: %w", coords.FullName(), err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM issues WHERE owner = ? AND repo = ?`,
		coords.Owner, coords.Name)
	if err != nil {
		return fmt.Errorf("failed to delete issues for %s: %w", coords.FullName(), err)
	}

	return tx.Commit()
}

// DeleteByIDs removes the records with the given node ids, including
// mention rows.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		for _, stmt := range []string{
			`DELETE FROM obo_mentions WHERE node_id = ?`,
			`DELETE FROM iri_mentions WHERE node_id = ?`,
			`DELETE FROM issues WHERE node_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete issue %s: %w", id, err)
			}
		}
	}

	return tx.Commit()
}

// FindAllByRepo returns every mirrored record under the repository
// partition.
func (s *Store) FindAllByRepo(ctx context.Context, coords models.RepoCoordinates) ([]mirror.IssueRecord, error) {
	return s.queryRecords(ctx, coords, `SELECT node_id FROM issues WHERE owner = ? AND repo = ? ORDER BY number`,
		coords.Owner, coords.Name)
}

// FindAllByRepoAndIRI returns the records in the partition whose IRI
// mention set contains the given IRI.
func (s *Store) FindAllByRepoAndIRI(ctx context.Context, coords models.RepoCoordinates, iri entity.IRI) ([]mirror.IssueRecord, error) {
	return s.queryRecords(ctx, coords, `
		SELECT i.node_id FROM issues i
		JOIN iri_mentions m ON m.node_id = i.node_id
		WHERE i.owner = ? AND i.repo = ? AND m.iri = ?
		ORDER BY i.number`,
		coords.Owner, coords.Name, string(iri))
}

// FindAllByRepoAndOboID returns the records in the partition whose
// prefixed-id mention set contains the given id.
func (s *Store) FindAllByRepoAndOboID(ctx context.Context, coords models.RepoCoordinates, oboID entity.OboID) ([]mirror.IssueRecord, error) {
	return s.queryRecords(ctx, coords, `
		SELECT i.node_id FROM issues i
		JOIN obo_mentions m ON m.node_id = i.node_id
		WHERE i.owner = ? AND i.repo = ? AND m.obo_id = ?
		ORDER BY i.number`,
		coords.Owner, coords.Name, string(oboID))
}

// queryRecords runs an id-producing query and loads the full record for
// each id.
func (s *Store) queryRecords(ctx context.Context, coords models.RepoCoordinates, query string, args ...any) ([]mirror.IssueRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues for %s: %w", coords.FullName(), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan issue id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]mirror.IssueRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.loadRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// loadRecord reads one mirrored record, including its mention sets.
func (s *Store) loadRecord(ctx context.Context, id string) (mirror.IssueRecord, error) {
	var (
		coords    models.RepoCoordinates
		issue     models.GitHubIssue
		closedAt  sql.NullTime
		labelsRaw string
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT node_id, owner, repo, number, title, body, state, html_url, created_at, updated_at, closed_at, labels
		FROM issues WHERE node_id = ?`, id)
	if err := row.Scan(
		&issue.NodeID, &coords.Owner, &coords.Name,
		&issue.Number, &issue.Title, &issue.Body, &issue.State, &issue.HTMLURL,
		&issue.CreatedAt, &issue.UpdatedAt, &closedAt, &labelsRaw,
	); err != nil {
		return mirror.IssueRecord{}, fmt.Errorf("failed to load issue %s: %w", id, err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		issue.ClosedAt = &t
	}
	if labelsRaw != "" {
		if err := json.Unmarshal([]byte(labelsRaw), &issue.Labels); err != nil {
			return mirror.IssueRecord{}, fmt.Errorf("failed to decode labels for issue %s: %w", id, err)
		}
	}

	oboIDs, err := s.loadMentions(ctx, `SELECT obo_id FROM obo_mentions WHERE node_id = ? ORDER BY obo_id`, id)
	if err != nil {
		return mirror.IssueRecord{}, err
	}
	iris, err := s.loadMentions(ctx, `SELECT iri FROM iri_mentions WHERE node_id = ? ORDER BY iri`, id)
	if err != nil {
		return mirror.IssueRecord{}, err
	}

	record := mirror.NewIssueRecord(id, coords, issue, toOboIDs(oboIDs), toIRIs(iris))
	return record, nil
}

func (s *Store) loadMentions(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions for issue %s: %w", id, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func toOboIDs(values []string) []entity.OboID {
	out := make([]entity.OboID, 0, len(values))
	for _, v := range values {
		out = append(out, entity.OboID(v))
	}
	return out
}

func toIRIs(values []string) []entity.IRI {
	out := make([]entity.IRI, 0, len(values))
	for _, v := range values {
		out = append(out, entity.IRI(v))
	}
	return out
}

// SaveSyncState inserts or replaces a project's sync-state record.
func (s *Store) SaveSyncState(ctx context.Context, record models.SyncStateRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_state (project_id, owner, repo, state, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(record.ProjectID),
		record.RepoCoords.Owner,
		record.RepoCoords.Name,
		string(record.State),
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sync state for %s: %w", record.ProjectID, err)
	}
	return nil
}

// FindSyncState returns the sync-state record for a project, or nil when
// the project is not linked.
func (s *Store) FindSyncState(ctx context.Context, projectID models.ProjectID) (*models.SyncStateRecord, error) {
	var (
		record    models.SyncStateRecord
		state     string
		updatedAt sql.NullTime
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT project_id, owner, repo, state, updated_at FROM sync_state WHERE project_id = ?`,
		string(projectID))
	err := row.Scan(&record.ProjectID, &record.RepoCoords.Owner, &record.RepoCoords.Name, &state, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state for %s: %w", projectID, err)
	}
	record.State = models.SyncState(state)
	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time
	}
	return &record, nil
}

// DeleteSyncState removes a project's sync-state record. Used when the link
// itself is removed.
func (s *Store) DeleteSyncState(ctx context.Context, projectID models.ProjectID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_state WHERE project_id = ?`, string(projectID))
	if err != nil {
		return fmt.Errorf("failed to delete sync state for %s: %w", projectID, err)
	}
	return nil
}

var _ mirror.IssueStore = (*Store)(nil)
