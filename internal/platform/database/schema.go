package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    fullname VARCHAR(256) NOT NULL,
    email VARCHAR(320) NOT NULL UNIQUE,
    password TEXT NOT NULL,
    is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    is_uploader BOOLEAN NOT NULL DEFAULT FALSE,
    is_pathologist BOOLEAN NOT NULL DEFAULT FALSE,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Images
CREATE TABLE IF NOT EXISTS images (
    id BIGSERIAL PRIMARY KEY,
    path TEXT NOT NULL,
    hash TEXT,
    original_name TEXT,
    user_id BIGINT REFERENCES users(id),
    from_ip TEXT,
    times_graded INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Tags (user-owned labels; at most one parent via tag_relations)
CREATE TABLE IF NOT EXISTS tags (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    user_id BIGINT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS tag_relations (
    tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    parent_tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (tag_id)
);

CREATE TABLE IF NOT EXISTS image_tags (
    image_id BIGINT NOT NULL REFERENCES images(id) ON DELETE CASCADE,
    tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (image_id, tag_id)
);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    short_name TEXT NOT NULL,
    prompt TEXT NOT NULL,
    investigator BIGINT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS observers (
    task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS task_images (
    task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    image_id BIGINT NOT NULL REFERENCES images(id) ON DELETE CASCADE,
    PRIMARY KEY (task_id, image_id)
);

CREATE TABLE IF NOT EXISTS task_tags (
    task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (task_id, tag_id)
);

-- Gradings. Append-only: repeat gradings of the same image are allowed.
CREATE TABLE IF NOT EXISTS hotornot (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    image_id BIGINT NOT NULL REFERENCES images(id),
    task_id BIGINT REFERENCES tasks(id) ON DELETE SET NULL,
    rating SMALLINT NOT NULL,
    comment TEXT,
    from_ip TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_hotornot_task ON hotornot(task_id);
CREATE INDEX IF NOT EXISTS idx_hotornot_image ON hotornot(image_id);
CREATE INDEX IF NOT EXISTS idx_hotornot_user ON hotornot(user_id);
CREATE INDEX IF NOT EXISTS idx_task_images_task ON task_images(task_id);
CREATE INDEX IF NOT EXISTS idx_observers_task ON observers(task_id);
`
