package mysql

// text_hash is SHA-1 of the normalized text; query_text is capped at maxQueryLen runes.
const upsertMissSQL = `
INSERT INTO unmatched_queries (text_hash, query_text, hits, last_chat_id)
VALUES (?, ?, 1, ?)
ON DUPLICATE KEY UPDATE
  hits         = hits + 1,
  last_chat_id = VALUES(last_chat_id),
  last_seen    = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Most frequent first; ties broken by recency.
const topMissesSQL = `
SELECT query_text, hits, last_chat_id, last_seen
FROM unmatched_queries
ORDER BY hits DESC, last_seen DESC
LIMIT ?
`
