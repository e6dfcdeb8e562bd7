package storage

const schema = `
-- Each row is one vocabulary card owned by one user. The review columns
-- are only ever written by the scheduler's output.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    word TEXT NOT NULL,
    target_language TEXT NOT NULL,
    translation TEXT NOT NULL DEFAULT '',
    example_sentences TEXT NOT NULL DEFAULT '[]', -- JSON array
    image_url TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    last_reviewed DATETIME,
    next_review_date DATETIME NOT NULL,
    interval INTEGER NOT NULL DEFAULT 0,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    source_id INTEGER,

    UNIQUE(user_id, fingerprint),
    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS cards_due ON cards(user_id, next_review_date);

CREATE TABLE IF NOT EXISTS review_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    reviewed_at DATETIME NOT NULL,
    quality INTEGER NOT NULL,
    interval INTEGER NOT NULL,
    ease_factor REAL NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);

-- Word lists a user imports from, either a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    path TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'local',
    target_language TEXT NOT NULL,
    last_scanned DATETIME,

    UNIQUE(user_id, path)
);
`
