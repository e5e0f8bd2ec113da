package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// bundleStore implements driven.BundleStore.
// Bundles outlive the document they were generated from.
type bundleStore struct {
	db *sql.DB
}

var _ driven.BundleStore = (*bundleStore)(nil)

// SaveBundle stores a fully assembled bundle.
func (s *bundleStore) SaveBundle(ctx context.Context, bundle *domain.ProjectBundle) error {
	if bundle == nil || bundle.ID == "" {
		return domain.ErrInvalidInput
	}

	filesJSON, err := json.Marshal(bundle.Files)
	if err != nil {
		return fmt.Errorf("marshalling files: %w", err)
	}
	treeJSON, err := json.Marshal(bundle.Tree)
	if err != nil {
		return fmt.Errorf("marshalling tree: %w", err)
	}
	warningsJSON, err := json.Marshal(bundle.Warnings)
	if err != nil {
		return fmt.Errorf("marshalling warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bundles (id, document_id, technology, prompt, files, tree, instructions, warnings, strategy, archive, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, bundle.ID, bundle.DocumentID, string(bundle.Technology), bundle.Prompt,
		string(filesJSON), string(treeJSON), bundle.Instructions, string(warningsJSON),
		string(bundle.Strategy), bundle.Archive, bundle.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving bundle: %w", err)
	}
	return nil
}

// GetBundle retrieves a bundle by ID including its archive.
func (s *bundleStore) GetBundle(ctx context.Context, id string) (*domain.ProjectBundle, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, technology, prompt, files, tree, instructions, warnings, strategy, archive, created_at
		FROM bundles WHERE id = ?
	`, id)
	bundle, err := scanBundle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBundleNotFound
	}
	return bundle, err
}

// ListBundles returns bundles newest first without archives.
func (s *bundleStore) ListBundles(ctx context.Context, documentID string) ([]domain.ProjectBundle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, technology, prompt, files, tree, instructions, warnings, strategy, NULL, created_at
		FROM bundles WHERE ? = '' OR document_id = ?
		ORDER BY created_at DESC, id
	`, documentID, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying bundles: %w", err)
	}
	defer rows.Close()

	bundles := []domain.ProjectBundle{}
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, *bundle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bundles: %w", err)
	}
	return bundles, nil
}

func scanBundle(row rowScanner) (*domain.ProjectBundle, error) {
	var b domain.ProjectBundle
	var technology, strategy, filesJSON, treeJSON, warningsJSON string

	if err := row.Scan(&b.ID, &b.DocumentID, &technology, &b.Prompt, &filesJSON, &treeJSON,
		&b.Instructions, &warningsJSON, &strategy, &b.Archive, &b.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning bundle: %w", err)
	}
	b.Technology = domain.TechnologyID(technology)
	b.Strategy = domain.Strategy(strategy)

	if err := json.Unmarshal([]byte(filesJSON), &b.Files); err != nil {
		return nil, fmt.Errorf("unmarshaling files: %w", err)
	}
	if err := json.Unmarshal([]byte(treeJSON), &b.Tree); err != nil {
		return nil, fmt.Errorf("unmarshaling tree: %w", err)
	}
	if err := json.Unmarshal([]byte(warningsJSON), &b.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshaling warnings: %w", err)
	}
	return &b, nil
}
