package sqlstore

import (
	"context"
	"fmt"

	"mataam/internal/catalog"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        slug VARCHAR(255) NOT NULL UNIQUE,
        image TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        category_id BIGINT NULL,
        name VARCHAR(255) NOT NULL,
        description TEXT NOT NULL,
        price BIGINT NOT NULL DEFAULT 0,
        unit_type VARCHAR(16) NOT NULL DEFAULT 'piece',
        image TEXT NOT NULL,
        is_popular BOOLEAN NOT NULL DEFAULT FALSE,
        INDEX idx_products_category (category_id),
        CONSTRAINT fk_products_category FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL
    )`,
	`CREATE TABLE IF NOT EXISTS delivery_locations (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        price BIGINT NOT NULL,
        image TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS offers (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        title VARCHAR(255) NOT NULL,
        description TEXT NOT NULL,
        original_price BIGINT NOT NULL,
        discounted_price BIGINT NOT NULL,
        image TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS synced_images (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        file_id VARCHAR(255) NOT NULL UNIQUE,
        file_name VARCHAR(512) NOT NULL,
        url TEXT NOT NULL,
        synced_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE TABLE IF NOT EXISTS profile (
        id TINYINT PRIMARY KEY,
        display_name VARCHAR(255) NOT NULL,
        tagline TEXT,
        whatsapp_phone VARCHAR(32),
        address TEXT,
        avatar_url TEXT
    )`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        slug TEXT NOT NULL UNIQUE,
        image TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id BIGSERIAL PRIMARY KEY,
        category_id BIGINT NULL REFERENCES categories(id) ON DELETE SET NULL,
        name TEXT NOT NULL,
        description TEXT NOT NULL,
        price BIGINT NOT NULL DEFAULT 0,
        unit_type TEXT NOT NULL DEFAULT 'piece',
        image TEXT NOT NULL,
        is_popular BOOLEAN NOT NULL DEFAULT FALSE
    )`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category_id)`,
	`CREATE TABLE IF NOT EXISTS delivery_locations (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        price BIGINT NOT NULL,
        image TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS offers (
        id BIGSERIAL PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        original_price BIGINT NOT NULL,
        discounted_price BIGINT NOT NULL,
        image TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS synced_images (
        id BIGSERIAL PRIMARY KEY,
        file_id TEXT NOT NULL UNIQUE,
        file_name TEXT NOT NULL,
        url TEXT NOT NULL,
        synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS profile (
        id SMALLINT PRIMARY KEY,
        display_name TEXT NOT NULL,
        tagline TEXT,
        whatsapp_phone TEXT,
        address TEXT,
        avatar_url TEXT
    )`,
}

// ensureSchema creates the tables if they don't exist and seeds the single
// profile row.
func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := mysqlSchema
	if s.dialect == dialectPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	p := catalog.DefaultProfile
	q := s.dialect.insertIgnore("profile", "id, display_name, tagline, whatsapp_phone, address, avatar_url", "id", 6)
	if _, err := s.db.ExecContext(ctx, s.dialect.rebind(q), 1, p.DisplayName, p.Tagline, p.WhatsAppPhone, p.Address, p.AvatarURL); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	return nil
}
