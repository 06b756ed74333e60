// Package sqlstore implements catalog.Store on database/sql. MySQL (and
// TiDB) DSNs use go-sql-driver/mysql, postgres:// URLs use pgx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mataam/internal/catalog"
)

type Store struct {
	db      *sql.DB
	dialect dialect
}

var _ catalog.Store = (*Store)(nil)

// Open connects, pings and creates the schema. The caller falls back to the
// in-memory store when it returns an error.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	d, dsn := detectDialect(dsn)
	if d == dialectMySQL {
		var err error
		if dsn, err = prepareMySQLDSN(dsn, log); err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("database ready", slog.String("dialect", d.String()))
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

// insert runs an INSERT and returns the new row id. Postgres has no
// LastInsertId, so the statement is suffixed with RETURNING id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect == dialectPostgres {
		var id int64
		if err := s.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// deleteByID deletes one row and maps zero affected rows to ErrNotFound.
func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.exec(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func sqlNull(id *int64) any {
	if id == nil || *id == 0 {
		return nil
	}
	return *id
}

// ---- categories

func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.query(ctx, "SELECT id, name, slug, image FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Image); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Category(ctx context.Context, id int64) (catalog.Category, error) {
	var c catalog.Category
	err := s.queryRow(ctx, "SELECT id, name, slug, image FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	var n int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM categories WHERE slug = ?", c.Slug).Scan(&n); err != nil {
		return catalog.Category{}, fmt.Errorf("check slug: %w", err)
	}
	if n > 0 {
		return catalog.Category{}, fmt.Errorf("slug %q already used: %w", c.Slug, catalog.ErrInvalidInput)
	}
	id, err := s.insert(ctx, "INSERT INTO categories (name, slug, image) VALUES (?, ?, ?)", c.Name, c.Slug, c.Image)
	if err != nil {
		return catalog.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID = id
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.dialect.rebind("UPDATE products SET category_id = NULL WHERE category_id = ?"), id); err != nil {
		return fmt.Errorf("detach products: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.dialect.rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return tx.Commit()
}

// ---- products

const productCols = "id, category_id, name, description, price, unit_type, image, is_popular"

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (catalog.Product, error) {
	var (
		p     catalog.Product
		cat   sql.NullInt64
		unit  string
		isPop sql.NullBool
	)
	if err := row.Scan(&p.ID, &cat, &p.Name, &p.Description, &p.Price, &unit, &p.Image, &isPop); err != nil {
		return catalog.Product{}, err
	}
	if cat.Valid {
		id := cat.Int64
		p.CategoryID = &id
	}
	p.UnitType = catalog.UnitPiece
	if u, ok := catalog.ParseUnitType(unit); ok {
		p.UnitType = u
	}
	p.IsPopular = isPop.Valid && isPop.Bool
	return p, nil
}

func (s *Store) Products(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	where := []string{}
	args := []any{}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.IsPopular {
		where = append(where, "is_popular = ?")
		args = append(args, true)
	}
	q := "SELECT " + productCols + " FROM products"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	out := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) productWhere(ctx context.Context, cond string, arg any) (catalog.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, "SELECT "+productCols+" FROM products WHERE "+cond+" LIMIT 1", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) Product(ctx context.Context, id int64) (catalog.Product, error) {
	return s.productWhere(ctx, "id = ?", id)
}

func (s *Store) ProductByImage(ctx context.Context, url string) (catalog.Product, error) {
	return s.productWhere(ctx, "image = ?", url)
}

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	p, err := catalog.ValidateProduct(p)
	if err != nil {
		return catalog.Product{}, err
	}
	id, err := s.insert(ctx, "INSERT INTO products (category_id, name, description, price, unit_type, image, is_popular) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sqlNull(p.CategoryID), p.Name, p.Description, p.Price, string(p.UnitType), p.Image, p.IsPopular)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return p, nil
}

func (s *Store) PatchProduct(ctx context.Context, id int64, patch catalog.ProductPatch) (catalog.Product, error) {
	setCols := []string{}
	args := []any{}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return catalog.Product{}, catalog.ErrInvalidInput
		}
		setCols = append(setCols, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.UnitType != nil && patch.UnitType.Valid() {
		setCols = append(setCols, "unit_type = ?")
		args = append(args, string(*patch.UnitType))
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		setCols = append(setCols, "name = ?")
		args = append(args, *patch.Name)
	}
	if len(setCols) == 0 {
		return s.Product(ctx, id)
	}
	args = append(args, id)
	// MySQL reports 0 affected rows when the values are unchanged, so
	// existence is decided by the read-back instead.
	if _, err := s.exec(ctx, "UPDATE products SET "+strings.Join(setCols, ", ")+" WHERE id = ?", args...); err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}
	return s.Product(ctx, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "products", id)
}

// ---- delivery locations

func (s *Store) DeliveryLocations(ctx context.Context) ([]catalog.DeliveryLocation, error) {
	rows, err := s.query(ctx, "SELECT id, name, price, image FROM delivery_locations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list delivery locations: %w", err)
	}
	defer rows.Close()
	out := []catalog.DeliveryLocation{}
	for rows.Next() {
		var l catalog.DeliveryLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.Price, &l.Image); err != nil {
			return nil, fmt.Errorf("scan delivery location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CreateDeliveryLocation(ctx context.Context, l catalog.DeliveryLocation) (catalog.DeliveryLocation, error) {
	if l.Price < 0 {
		return catalog.DeliveryLocation{}, catalog.ErrInvalidInput
	}
	id, err := s.insert(ctx, "INSERT INTO delivery_locations (name, price, image) VALUES (?, ?, ?)", l.Name, l.Price, l.Image)
	if err != nil {
		return catalog.DeliveryLocation{}, fmt.Errorf("insert delivery location: %w", err)
	}
	l.ID = id
	return l, nil
}

func (s *Store) DeleteDeliveryLocation(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delivery_locations", id)
}

// ---- offers

func (s *Store) Offers(ctx context.Context) ([]catalog.Offer, error) {
	rows, err := s.query(ctx, "SELECT id, title, description, original_price, discounted_price, image FROM offers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	out := []catalog.Offer{}
	for rows.Next() {
		var o catalog.Offer
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.OriginalPrice, &o.DiscountedPrice, &o.Image); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) CreateOffer(ctx context.Context, o catalog.Offer) (catalog.Offer, error) {
	id, err := s.insert(ctx, "INSERT INTO offers (title, description, original_price, discounted_price, image) VALUES (?, ?, ?, ?, ?)",
		o.Title, o.Description, o.OriginalPrice, o.DiscountedPrice, o.Image)
	if err != nil {
		return catalog.Offer{}, fmt.Errorf("insert offer: %w", err)
	}
	o.ID = id
	return o, nil
}

// ---- profile

func (s *Store) Profile(ctx context.Context) (catalog.Profile, error) {
	var (
		p                               catalog.Profile
		tagline, phone, address, avatar sql.NullString
	)
	err := s.queryRow(ctx, "SELECT display_name, tagline, whatsapp_phone, address, avatar_url FROM profile WHERE id = 1").
		Scan(&p.DisplayName, &tagline, &phone, &address, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.DefaultProfile, nil
	}
	if err != nil {
		return catalog.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	p.Tagline, p.WhatsAppPhone, p.Address, p.AvatarURL = tagline.String, phone.String, address.String, avatar.String
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p catalog.Profile) error {
	_, err := s.exec(ctx, "UPDATE profile SET display_name = ?, tagline = ?, whatsapp_phone = ?, address = ?, avatar_url = ? WHERE id = 1",
		p.DisplayName, p.Tagline, p.WhatsAppPhone, p.Address, p.AvatarURL)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// ---- synced images

func (s *Store) SyncedImages(ctx context.Context) ([]catalog.SyncedImage, error) {
	rows, err := s.query(ctx, "SELECT id, file_id, file_name, url, synced_at FROM synced_images ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list synced images: %w", err)
	}
	defer rows.Close()
	out := []catalog.SyncedImage{}
	for rows.Next() {
		var img catalog.SyncedImage
		if err := rows.Scan(&img.ID, &img.FileID, &img.FileName, &img.URL, &img.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan synced image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (s *Store) ClaimImage(ctx context.Context, img catalog.SyncedImage) (bool, error) {
	if img.SyncedAt.IsZero() {
		img.SyncedAt = time.Now().UTC()
	}
	q := s.dialect.insertIgnore("synced_images", "file_id, file_name, url, synced_at", "file_id", 4)
	res, err := s.exec(ctx, q, img.FileID, img.FileName, img.URL, img.SyncedAt)
	if err != nil {
		return false, fmt.Errorf("claim image %s: %w", img.FileID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim image %s: %w", img.FileID, err)
	}
	return n == 1, nil
}
