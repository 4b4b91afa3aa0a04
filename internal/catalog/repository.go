package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrSlugExists      = errors.New("product slug already exists")
	ErrSKUExists       = errors.New("variant sku already exists")
	// ErrProductInUse is returned when a delete would orphan order history.
	ErrProductInUse = errors.New("product is referenced by existing orders")
)

type Repository interface {
	ProductsByIDs(ctx context.Context, ids []int64) ([]Product, error)
	VariantsByIDs(ctx context.Context, ids []int64) ([]ProductVariant, error)

	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error)
	ListCollections(ctx context.Context) ([]Collection, error)
	ListTags(ctx context.Context) ([]Tag, error)

	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	CreateVariant(ctx context.Context, v *ProductVariant) error
	UpdateVariant(ctx context.Context, v *ProductVariant) error
	DeleteVariant(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, slug, tag_line, base_price, currency,
	is_new, is_best_seller, is_limited_edition, on_sale, created_at, updated_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.TagLine,
		&p.BasePrice,
		&p.Currency,
		&p.IsNew,
		&p.IsBestSeller,
		&p.IsLimitedEdition,
		&p.OnSale,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *postgresRepository) ProductsByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, len(ids))
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) VariantsByIDs(ctx context.Context, ids []int64) ([]ProductVariant, error) {
	if len(ids) == 0 {
		return []ProductVariant{}, nil
	}

	query := `
		SELECT id, product_id, sku, size, color, price, stock
		FROM product_variants
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query variants by ids: %w", err)
	}
	defer rows.Close()

	variants := make([]ProductVariant, 0, len(ids))
	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("repository: failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating variants: %w", err)
	}

	return variants, nil
}

func (r *postgresRepository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	var p Product
	if err := scanProduct(r.db.QueryRow(ctx, query, slug), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by slug %q: %w", slug, err)
	}

	if err := r.loadRelations(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	if err := scanProduct(r.db.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %d: %w", id, err)
	}

	if err := r.loadRelations(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) loadRelations(ctx context.Context, p *Product) error {
	variantQuery := `
		SELECT id, product_id, sku, size, color, price, stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, variantQuery, p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to query variants for product %d: %w", p.ID, err)
	}
	defer rows.Close()

	p.Variants = make([]ProductVariant, 0)
	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &v.Stock); err != nil {
			return fmt.Errorf("repository: failed to scan variant for product %d: %w", p.ID, err)
		}
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating variants for product %d: %w", p.ID, err)
	}

	collectionQuery := `
		SELECT c.id, c.slug, c.name, c.description
		FROM collections c
		JOIN product_collections pc ON pc.collection_id = c.id
		WHERE pc.product_id = $1
		ORDER BY c.name
	`
	colRows, err := r.db.Query(ctx, collectionQuery, p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to query collections for product %d: %w", p.ID, err)
	}
	defer colRows.Close()

	p.Collections = make([]Collection, 0)
	for colRows.Next() {
		var c Collection
		if err := colRows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description); err != nil {
			return fmt.Errorf("repository: failed to scan collection for product %d: %w", p.ID, err)
		}
		p.Collections = append(p.Collections, c)
	}
	if err := colRows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating collections for product %d: %w", p.ID, err)
	}

	tagQuery := `
		SELECT t.id, t.slug, t.name
		FROM tags t
		JOIN product_tags pt ON pt.tag_id = t.id
		WHERE pt.product_id = $1
		ORDER BY t.name
	`
	tagRows, err := r.db.Query(ctx, tagQuery, p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to query tags for product %d: %w", p.ID, err)
	}
	defer tagRows.Close()

	p.Tags = make([]Tag, 0)
	for tagRows.Next() {
		var t Tag
		if err := tagRows.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
			return fmt.Errorf("repository: failed to scan tag for product %d: %w", p.ID, err)
		}
		p.Tags = append(p.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating tags for product %d: %w", p.ID, err)
	}

	return nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	var (
		conditions []string
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		ph := arg(pattern)
		conditions = append(conditions,
			fmt.Sprintf("(name ILIKE %s OR tag_line ILIKE %s)", ph, ph))
	}

	if filter.CollectionSlug != "" {
		conditions = append(conditions, fmt.Sprintf(`id IN (
			SELECT pc.product_id FROM product_collections pc
			JOIN collections c ON c.id = pc.collection_id
			WHERE c.slug = %s)`, arg(filter.CollectionSlug)))
	}

	if len(filter.TagSlugs) > 0 {
		conditions = append(conditions, fmt.Sprintf(`id IN (
			SELECT pt.product_id FROM product_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.slug = ANY(%s))`, arg(filter.TagSlugs)))
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, "base_price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "base_price <= "+arg(*filter.MaxPrice))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := " ORDER BY created_at DESC"
	switch filter.Sort {
	case SortPriceAsc:
		orderBy = " ORDER BY base_price ASC"
	case SortPriceDesc:
		orderBy = " ORDER BY base_price DESC"
	case SortBestSellers:
		orderBy = " ORDER BY is_best_seller DESC, created_at DESC"
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + orderBy

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating products: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM products` + where

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	return products, total, nil
}

func (r *postgresRepository) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, slug, name, description FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := make([]Collection, 0)
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("repository: failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating collections: %w", err)
	}

	return collections, nil
}

func (r *postgresRepository) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
			return nil, fmt.Errorf("repository: failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating tags: %w", err)
	}

	return tags, nil
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check slug %q: %w", slug, err)
	}
	return exists, nil
}

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (name, slug, tag_line, base_price, currency,
			is_new, is_best_seller, is_limited_edition, on_sale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.Name, p.Slug, p.TagLine, p.BasePrice, p.Currency,
		p.IsNew, p.IsBestSeller, p.IsLimitedEdition, p.OnSale,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $1, slug = $2, tag_line = $3, base_price = $4, currency = $5,
			is_new = $6, is_best_seller = $7, is_limited_edition = $8, on_sale = $9,
			updated_at = now()
		WHERE id = $10
	`

	cmdTag, err := r.db.Exec(ctx, query,
		p.Name, p.Slug, p.TagLine, p.BasePrice, p.Currency,
		p.IsNew, p.IsBestSeller, p.IsLimitedEdition, p.OnSale, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("repository: failed to update product %d: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return fmt.Errorf("repository: failed to delete product %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *postgresRepository) CreateVariant(ctx context.Context, v *ProductVariant) error {
	query := `
		INSERT INTO product_variants (product_id, sku, size, color, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		v.ProductID, v.SKU, v.Size, v.Color, v.Price, v.Stock,
	).Scan(&v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSKUExists
		}
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("repository: failed to insert variant: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateVariant(ctx context.Context, v *ProductVariant) error {
	query := `
		UPDATE product_variants
		SET sku = $1, size = $2, color = $3, price = $4, stock = $5
		WHERE id = $6
	`

	cmdTag, err := r.db.Exec(ctx, query, v.SKU, v.Size, v.Color, v.Price, v.Stock, v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSKUExists
		}
		return fmt.Errorf("repository: failed to update variant %d: %w", v.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrVariantNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteVariant(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return fmt.Errorf("repository: failed to delete variant %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrVariantNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
