package database

// Schema is the complete current schema, kept in sync with the migration
// files under migrations/files. Tests apply it directly to in-memory
// databases instead of running the migration machinery.
const Schema = `
CREATE TABLE keypairs (
    identity    TEXT PRIMARY KEY,
    public_key  BLOB NOT NULL,
    private_key BLOB NOT NULL,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE transfers (
    id            TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    recipient_id  TEXT NOT NULL,
    file_name     TEXT NOT NULL,
    size          INTEGER NOT NULL,
    wrapped_key   BLOB NOT NULL,
    nonce         BLOB NOT NULL,
    password_hash TEXT NOT NULL,
    expires_at    TIMESTAMP NOT NULL,
    status        TEXT NOT NULL DEFAULT 'pending',
    created_at    TIMESTAMP NOT NULL
);

CREATE INDEX idx_transfers_owner ON transfers(owner_id);
CREATE INDEX idx_transfers_recipient ON transfers(recipient_id, status);
CREATE INDEX idx_transfers_expires ON transfers(expires_at);
`
