package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS collections (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_singleton BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		deleted_at TIMESTAMP WITH TIME ZONE
	)`,

	// Slug uniqueness only applies to live collections
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_collections_project_slug
		ON collections(project_id, slug) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS fields (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		parent_field_id BIGINT REFERENCES fields(id) ON DELETE CASCADE,
		type VARCHAR(50) NOT NULL,
		label VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		placeholder VARCHAR(255),
		options JSONB NOT NULL DEFAULT '{}',
		validations JSONB NOT NULL DEFAULT '{}',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		deleted_at TIMESTAMP WITH TIME ZONE
	)`,

	// Group children may reuse a name under different parents, so the
	// parent id is part of the key. COALESCE folds NULL parents into one
	// bucket per collection.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_fields_collection_parent_name
		ON fields(collection_id, COALESCE(parent_field_id, 0), name) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS content_entries (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		locale VARCHAR(20) NOT NULL DEFAULT 'en',
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		published_at TIMESTAMP WITH TIME ZONE,
		translation_group_id UUID,
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		updated_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		deleted_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE TABLE IF NOT EXISTS content_field_groups (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		entry_id BIGINT NOT NULL REFERENCES content_entries(id) ON DELETE CASCADE,
		field_id BIGINT NOT NULL REFERENCES fields(id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS content_field_values (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		entry_id BIGINT NOT NULL REFERENCES content_entries(id) ON DELETE CASCADE,
		field_id BIGINT NOT NULL REFERENCES fields(id) ON DELETE CASCADE,
		group_id BIGINT REFERENCES content_field_groups(id) ON DELETE CASCADE,
		field_type VARCHAR(50) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		text_value TEXT,
		number_value NUMERIC(20,6),
		boolean_value BOOLEAN,
		date_value DATE,
		date_value_end DATE,
		datetime_value TIMESTAMP WITH TIME ZONE,
		datetime_value_end TIMESTAMP WITH TIME ZONE,
		json_value JSONB
	)`,

	`CREATE TABLE IF NOT EXISTS assets (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		filename VARCHAR(500) NOT NULL,
		mime_type VARCHAR(255) NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		path VARCHAR(1000) NOT NULL,
		thumbnail_path VARCHAR(1000),
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS content_media_relations (
		id BIGSERIAL PRIMARY KEY,
		value_id BIGINT NOT NULL REFERENCES content_field_values(id) ON DELETE CASCADE,
		asset_id BIGINT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS content_relation_field_relations (
		id BIGSERIAL PRIMARY KEY,
		value_id BIGINT NOT NULL REFERENCES content_field_values(id) ON DELETE CASCADE,
		related_entry_id BIGINT NOT NULL REFERENCES content_entries(id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS webhooks (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		url VARCHAR(1000) NOT NULL,
		secret VARCHAR(255) NOT NULL DEFAULT '',
		events JSONB NOT NULL DEFAULT '[]',
		sources JSONB NOT NULL DEFAULT '[]',
		collection_ids JSONB NOT NULL DEFAULT '[]',
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS project_templates (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		slug VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		has_demo_data BOOLEAN NOT NULL DEFAULT FALSE,
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS collection_templates (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS project_api_keys (
		id BIGSERIAL PRIMARY KEY,
		uuid UUID NOT NULL UNIQUE DEFAULT uuid_generate_v4(),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		key_hash VARCHAR(255) NOT NULL UNIQUE,
		key_prefix VARCHAR(20) NOT NULL,
		created_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMP WITH TIME ZONE,
		revoked_at TIMESTAMP WITH TIME ZONE,
		last_used_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_collections_project_id ON collections(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fields_collection_id ON fields(collection_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fields_parent_field_id ON fields(parent_field_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_entries_collection_id ON content_entries(collection_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_field_groups_entry_id ON content_field_groups(entry_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_field_values_entry_id ON content_field_values(entry_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_field_values_field_id ON content_field_values(field_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_media_relations_value_id ON content_media_relations(value_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_relation_field_relations_value_id ON content_relation_field_relations(value_id)`,
	`CREATE INDEX IF NOT EXISTS idx_webhooks_project_id ON webhooks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_project_api_keys_key_hash ON project_api_keys(key_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_project_id ON assets(project_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
