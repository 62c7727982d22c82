package storage

// Schema is the SQL schema for the PocketNetwork database. All six
// entity tables live in one file; timestamps are RFC 3339 UTC text and
// list-valued columns (tags, topics) are ';'-joined strings.
const Schema = `
CREATE TABLE IF NOT EXISTS people (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL CHECK(name <> ''),
    pronouns       TEXT NOT NULL DEFAULT '',
    company        TEXT NOT NULL DEFAULT '',
    role           TEXT NOT NULL DEFAULT '',
    email          TEXT NOT NULL DEFAULT '',
    phone          TEXT NOT NULL DEFAULT '',
    photo_url      TEXT NOT NULL DEFAULT '',
    linkedin_url   TEXT NOT NULL DEFAULT '',
    notes          TEXT NOT NULL DEFAULT '',
    tags           TEXT NOT NULL DEFAULT '',
    needs_refining INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL CHECK(name <> ''),
    date       TEXT NOT NULL,
    location   TEXT NOT NULL DEFAULT '',
    series     TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meets (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    person_id      INTEGER NULL REFERENCES people(id) ON DELETE CASCADE,
    event_id       INTEGER NULL REFERENCES events(id) ON DELETE SET NULL,
    when_at        TEXT NOT NULL,
    where_at       TEXT NOT NULL DEFAULT '',
    context        TEXT NOT NULL DEFAULT '',
    next_step      TEXT NOT NULL DEFAULT '',
    next_step_type TEXT NOT NULL DEFAULT 'none'
                   CHECK(next_step_type IN ('message', 'intro', 'send_link', 'coffee', 'none')),
    topics         TEXT NOT NULL DEFAULT '',
    energy         TEXT NOT NULL DEFAULT '',
    voice_note_url TEXT NOT NULL DEFAULT '',
    is_draft       INTEGER NOT NULL DEFAULT 0,
    needs_refining INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS follow_ups (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    meet_id       INTEGER NULL REFERENCES meets(id) ON DELETE SET NULL,
    person_id     INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    description   TEXT NOT NULL DEFAULT '',
    due_date      TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'done')),
    priority      TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
    completed     INTEGER NOT NULL DEFAULT 0,
    completed_at  TEXT NULL,
    snoozed_until TEXT NULL,
    snoozed_count INTEGER NOT NULL DEFAULT 0,
    draft_tone    TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS promises (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    person_id    INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    meet_id      INTEGER NULL REFERENCES meets(id) ON DELETE SET NULL,
    verb         TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL CHECK(description <> ''),
    due_date     TEXT NULL,
    status       TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'done')),
    completed    INTEGER NOT NULL DEFAULT 0,
    completed_at TEXT NULL,
    created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS inbox_dumps (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    type         TEXT NOT NULL CHECK(type IN ('text', 'photo', 'audio')),
    content      TEXT NOT NULL DEFAULT '',
    blob_url     TEXT NOT NULL DEFAULT '',
    event_id     INTEGER NULL REFERENCES events(id) ON DELETE SET NULL,
    status       TEXT NOT NULL DEFAULT 'new' CHECK(status IN ('new', 'triaged', 'archived')),
    processed    INTEGER NOT NULL DEFAULT 0,
    processed_at TEXT NULL,
    created_at   TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS people_fts USING fts5(
    name,
    company,
    notes,
    content='people',
    content_rowid='id'
);

CREATE VIRTUAL TABLE IF NOT EXISTS dumps_fts USING fts5(
    content,
    content='inbox_dumps',
    content_rowid='id'
);

CREATE INDEX IF NOT EXISTS idx_people_name ON people(name);
CREATE INDEX IF NOT EXISTS idx_people_linkedin ON people(linkedin_url) WHERE linkedin_url <> '';
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_series ON events(series) WHERE series <> '';
CREATE INDEX IF NOT EXISTS idx_meets_person ON meets(person_id);
CREATE INDEX IF NOT EXISTS idx_meets_event ON meets(event_id);
CREATE INDEX IF NOT EXISTS idx_meets_when ON meets(when_at);
CREATE INDEX IF NOT EXISTS idx_followups_person ON follow_ups(person_id);
CREATE INDEX IF NOT EXISTS idx_followups_due ON follow_ups(due_date) WHERE completed = 0;
CREATE INDEX IF NOT EXISTS idx_promises_person ON promises(person_id);
CREATE INDEX IF NOT EXISTS idx_promises_due ON promises(due_date) WHERE completed = 0;
CREATE INDEX IF NOT EXISTS idx_dumps_status ON inbox_dumps(status);
`

// Triggers keep the FTS mirrors in sync with people and inbox_dumps.
const Triggers = `
CREATE TRIGGER IF NOT EXISTS people_ai AFTER INSERT ON people BEGIN
    INSERT INTO people_fts(rowid, name, company, notes) VALUES (new.id, new.name, new.company, new.notes);
END;
CREATE TRIGGER IF NOT EXISTS people_ad AFTER DELETE ON people BEGIN
    INSERT INTO people_fts(people_fts, rowid, name, company, notes) VALUES('delete', old.id, old.name, old.company, old.notes);
END;
CREATE TRIGGER IF NOT EXISTS people_au AFTER UPDATE ON people BEGIN
    INSERT INTO people_fts(people_fts, rowid, name, company, notes) VALUES('delete', old.id, old.name, old.company, old.notes);
    INSERT INTO people_fts(rowid, name, company, notes) VALUES (new.id, new.name, new.company, new.notes);
END;

CREATE TRIGGER IF NOT EXISTS dumps_ai AFTER INSERT ON inbox_dumps BEGIN
    INSERT INTO dumps_fts(rowid, content) VALUES (new.id, new.content);
END;
CREATE TRIGGER IF NOT EXISTS dumps_ad AFTER DELETE ON inbox_dumps BEGIN
    INSERT INTO dumps_fts(dumps_fts, rowid, content) VALUES('delete', old.id, old.content);
END;
CREATE TRIGGER IF NOT EXISTS dumps_au AFTER UPDATE ON inbox_dumps BEGIN
    INSERT INTO dumps_fts(dumps_fts, rowid, content) VALUES('delete', old.id, old.content);
    INSERT INTO dumps_fts(rowid, content) VALUES (new.id, new.content);
END;
`
