//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package pgvector

import "fmt"

// Table names come from configuration, not request input, so formatting
// them into the statements is safe.

func createTableSQL(table string, dimensions int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	metadata JSONB,
	embedding vector(%d) NOT NULL
)`, table, dimensions)
}

func createIndexSQL(table string) string {
	return fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`,
		table, table)
}

func upsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`,
		table)
}

func getSQL(table string) string {
	return fmt.Sprintf(`SELECT content, metadata FROM %s WHERE id = $1`, table)
}

func deleteSQL(table string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
}

func searchSQL(table string) string {
	return fmt.Sprintf(`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
FROM %s
ORDER BY embedding <=> $1
LIMIT $2`, table)
}

func countSQL(table string) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
}
