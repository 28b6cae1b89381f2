//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package mysql

// evalColumns is the column list shared by the insert and select statements.
const evalColumns = `id, test_run_id, qa_pair_id,
bleu, rouge_l, rouge_l_precision, rouge_l_recall,
squad_em, squad_token_f1, content_f1, lexical_aggregate,
answer_relevance, context_relevance, groundedness, llm_judged_overall,
answer, answer_relevance_reasoning, context_relevance_reasoning,
groundedness_reasoning, context_relevance_per_context,
groundedness_supported_claims, groundedness_total_claims`

const insertEvalSQL = `INSERT INTO evals (` + evalColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectEvalSQL = `SELECT ` + evalColumns + ` FROM evals`

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS evals (
	id VARCHAR(36) PRIMARY KEY,
	test_run_id VARCHAR(64) NOT NULL,
	qa_pair_id VARCHAR(64) NOT NULL,
	bleu DOUBLE NOT NULL DEFAULT 0,
	rouge_l DOUBLE NOT NULL DEFAULT 0,
	rouge_l_precision DOUBLE NOT NULL DEFAULT 0,
	rouge_l_recall DOUBLE NOT NULL DEFAULT 0,
	squad_em DOUBLE NOT NULL DEFAULT 0,
	squad_token_f1 DOUBLE NOT NULL DEFAULT 0,
	content_f1 DOUBLE NOT NULL DEFAULT 0,
	lexical_aggregate DOUBLE NOT NULL DEFAULT 0,
	answer_relevance DOUBLE NOT NULL DEFAULT 0,
	context_relevance DOUBLE NOT NULL DEFAULT 0,
	groundedness DOUBLE NOT NULL DEFAULT 0,
	llm_judged_overall DOUBLE NOT NULL DEFAULT 0,
	answer TEXT,
	answer_relevance_reasoning TEXT,
	context_relevance_reasoning TEXT,
	groundedness_reasoning TEXT,
	context_relevance_per_context TEXT,
	groundedness_supported_claims INT NOT NULL DEFAULT 0,
	groundedness_total_claims INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	UNIQUE KEY uniq_evals_run_qa (test_run_id, qa_pair_id),
	KEY idx_evals_test_run (test_run_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS eval_chunks (
	eval_id VARCHAR(36) NOT NULL,
	chunk_id VARCHAR(64) NOT NULL,
	PRIMARY KEY (eval_id, chunk_id),
	CONSTRAINT fk_eval_chunks_eval FOREIGN KEY (eval_id)
		REFERENCES evals (id) ON DELETE CASCADE ON UPDATE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
