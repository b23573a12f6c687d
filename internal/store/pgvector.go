package store

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"document-chat/internal/config"
	"document-chat/internal/models"
)

type chunkRow struct {
	bun.BaseModel `bun:"table:document_chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	DocumentID    int64     `bun:"document_id,notnull"`
	ChunkText     string    `bun:"chunk_text,notnull"`
	StartOffset   int       `bun:"start_offset,notnull"`
	EndOffset     int       `bun:"end_offset,notnull"`
	PageNumber    int       `bun:"page_number,notnull"`
	Embedding     []float32 `bun:"embedding,type:vector(768)"`
	Similarity    float64   `bun:"similarity,scanonly"`
}

// PgIndex is a VectorIndex on a Postgres table with a pgvector column.
// Vectors are unit-normalized, so the cosine distance operator gives
// the same ranking the in-memory index computes.
type PgIndex struct {
	db *bun.DB
}

var _ VectorIndex = (*PgIndex)(nil)

func NewPgIndex(ctx context.Context, cfg *config.DatabaseConfig) (*PgIndex, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	_, err := db.NewCreateTable().Model((*chunkRow)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &PgIndex{db: db}, nil
}

func (x *PgIndex) Close() error { return x.db.Close() }

func (x *PgIndex) Put(ctx context.Context, chunk *models.Chunk) error {
	row := &chunkRow{
		DocumentID:  chunk.DocumentID,
		ChunkText:   chunk.Text,
		StartOffset: chunk.StartOffset,
		EndOffset:   chunk.EndOffset,
		PageNumber:  chunk.PageNumber,
		Embedding:   chunk.Embedding,
	}
	if _, err := x.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return err
	}
	chunk.ID = row.ID
	return nil
}

func (x *PgIndex) Query(ctx context.Context, documentID int64, vector []float32, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}
	var rows []chunkRow
	err := x.db.NewSelect().
		Model(&rows).
		ColumnExpr("c.*").
		ColumnExpr("1 - (embedding <=> ?) AS similarity", vector).
		Where("document_id = ?", documentID).
		Where("embedding IS NOT NULL").
		OrderExpr("embedding <=> ?", vector).
		Order("id ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	retrieved := make([]models.RetrievedChunk, len(rows))
	for i, row := range rows {
		retrieved[i] = models.RetrievedChunk{
			ChunkID:    row.ID,
			PageNumber: row.PageNumber,
			Text:       row.ChunkText,
			Similarity: row.Similarity,
		}
	}
	return retrieved, nil
}

func (x *PgIndex) ChunksByDocument(ctx context.Context, documentID int64) ([]models.Chunk, error) {
	var rows []chunkRow
	err := x.db.NewSelect().
		Model(&rows).
		Where("document_id = ?", documentID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = models.Chunk{
			ID:          row.ID,
			DocumentID:  row.DocumentID,
			Text:        row.ChunkText,
			StartOffset: row.StartOffset,
			EndOffset:   row.EndOffset,
			PageNumber:  row.PageNumber,
			Embedding:   row.Embedding,
		}
	}
	return chunks, nil
}

func (x *PgIndex) DropDocument(ctx context.Context, documentID int64) error {
	_, err := x.db.NewDelete().
		Model((*chunkRow)(nil)).
		Where("document_id = ?", documentID).
		Exec(ctx)
	return err
}
