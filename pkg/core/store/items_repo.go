package store

import (
	"context"
	"encoding/json"
	"fmt"

	"itemxtract/pkg/core/filing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemsRepo provides storage for extracted filing items. One row per
// (accession_number, item_id); re-runs upsert in place.
type ItemsRepo struct {
	pool *pgxpool.Pool
}

// NewItemsRepo creates a new items repository.
func NewItemsRepo(pool *pgxpool.Pool) *ItemsRepo {
	return &ItemsRepo{pool: pool}
}

// EnsureSchema creates the items table when it does not exist yet.
func (r *ItemsRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sec_filing_items (
			id BIGSERIAL PRIMARY KEY,
			cik TEXT NOT NULL,
			ticker TEXT,
			accession_number TEXT NOT NULL,
			form_type TEXT NOT NULL,
			fiscal_year INT,
			item_id TEXT NOT NULL,
			item_title TEXT,
			html_content TEXT,
			text_content TEXT,
			structure JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (accession_number, item_id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure items schema: %w", err)
	}
	return nil
}

// SaveItem upserts one extracted item, optionally with its structure tree.
func (r *ItemsRepo) SaveItem(ctx context.Context, id filing.FilingID, item filing.ExtractedItem, tree *filing.StructureNode) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	var structureJSON []byte
	if tree != nil {
		var err error
		structureJSON, err = json.Marshal(tree)
		if err != nil {
			return fmt.Errorf("failed to marshal structure: %w", err)
		}
	}

	query := `
		INSERT INTO sec_filing_items (
			cik, ticker, accession_number, form_type, fiscal_year,
			item_id, item_title, html_content, text_content, structure
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (accession_number, item_id)
		DO UPDATE SET
			item_title = EXCLUDED.item_title,
			html_content = EXCLUDED.html_content,
			text_content = EXCLUDED.text_content,
			structure = EXCLUDED.structure,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		id.CIK, id.Ticker, id.AccessionNumber, id.Form, id.FiscalYear,
		item.ItemID, item.Title, item.HTMLContent, item.TextContent, structureJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.ItemID, err)
	}
	return nil
}

// SaveResult upserts every item of one extraction, with structures when
// provided.
func (r *ItemsRepo) SaveResult(ctx context.Context, res *filing.Result, trees map[string]*filing.StructureNode) error {
	for itemID, item := range res.Items {
		if err := r.SaveItem(ctx, res.Filing, item, trees[itemID]); err != nil {
			return err
		}
	}
	return nil
}

// GetItem loads one stored item by accession number and item id.
func (r *ItemsRepo) GetItem(ctx context.Context, accessionNumber, itemID string) (*filing.ExtractedItem, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}
	var item filing.ExtractedItem
	err := r.pool.QueryRow(ctx, `
		SELECT item_id, item_title, html_content, text_content
		FROM sec_filing_items
		WHERE accession_number = $1 AND item_id = $2`,
		accessionNumber, itemID,
	).Scan(&item.ItemID, &item.Title, &item.HTMLContent, &item.TextContent)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s/%s: %w", accessionNumber, itemID, err)
	}
	return &item, nil
}

// ListItems returns the item ids stored for one filing.
func (r *ItemsRepo) ListItems(ctx context.Context, accessionNumber string) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT item_id FROM sec_filing_items
		WHERE accession_number = $1
		ORDER BY item_id`,
		accessionNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for %s: %w", accessionNumber, err)
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
