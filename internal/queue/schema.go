package queue

// schemaVersion tracks the queue_entries layout. Bump it whenever the schema
// below changes; the store refuses databases created by a newer version.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS queue_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    title TEXT,
    url TEXT,
    brand TEXT,
    category TEXT,
    store TEXT,
    price REAL NOT NULL DEFAULT 0,
    source TEXT,
    limited_edition INTEGER NOT NULL DEFAULT 0,
    release_state TEXT NOT NULL,
    stock_status TEXT,
    score REAL NOT NULL DEFAULT 0,
    breakdown_json TEXT,
    admitted_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queue_entries_priority
    ON queue_entries (score DESC, admitted_at ASC);

CREATE INDEX IF NOT EXISTS idx_queue_entries_fingerprint
    ON queue_entries (fingerprint);
`
