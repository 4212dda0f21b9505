package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListBrands returns all brands ordered by name.
func (s *Store) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, slug FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (Brand, error) {
		var b Brand
		err := r.Scan(&b.ID, &b.Name, &b.Slug)
		return b, err
	})
}

// ListCategories returns all categories with parent linkage.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, slug, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (Category, error) {
		var c Category
		err := r.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID)
		return c, err
	})
}

// ListSizes returns all size options in display order.
func (s *Store) ListSizes(ctx context.Context) ([]Size, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, sort_order FROM sizes ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (Size, error) {
		var sz Size
		err := r.Scan(&sz.ID, &sz.Name, &sz.SortOrder)
		return sz, err
	})
}

// ListColors returns all color options ordered by name.
func (s *Store) ListColors(ctx context.Context) ([]Color, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, hex FROM colors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (Color, error) {
		var c Color
		err := r.Scan(&c.ID, &c.Name, &c.Hex)
		return c, err
	})
}

// ProductFilter restricts product listing queries.
type ProductFilter struct {
	Query        string
	CategorySlug string
	BrandSlug    string
	Limit        int32
	Offset       int32
}

const productFilterWhere = `
	WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR c.slug = $2)
	  AND ($3 = '' OR b.slug = $3)`

// CountProducts counts products matching the filter.
func (s *Store) CountProducts(ctx context.Context, f ProductFilter) (int64, error) {
	var total int64
	err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN brands b ON b.id = p.brand_id`+productFilterWhere,
		f.Query, f.CategorySlug, f.BrandSlug,
	).Scan(&total)
	return total, err
}

// ListProducts returns products matching the filter ordered by creation date.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT p.id, p.title, p.slug, p.description, p.brand_id, p.category_id, p.created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN brands b ON b.id = p.brand_id`+productFilterWhere+`
		ORDER BY p.created_at DESC
		LIMIT $4 OFFSET $5`,
		f.Query, f.CategorySlug, f.BrandSlug, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

// GetProductBySlug loads a single product by its slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	var p Product
	err := s.Pool.QueryRow(ctx, `
		SELECT id, title, slug, description, brand_id, category_id, created_at
		FROM products WHERE slug = $1`, strings.TrimSpace(slug),
	).Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.BrandID, &p.CategoryID, &p.CreatedAt)
	return p, mapErr(err)
}

// GetProductByID loads a single product by id.
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := s.Pool.QueryRow(ctx, `
		SELECT id, title, slug, description, brand_id, category_id, created_at
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.BrandID, &p.CategoryID, &p.CreatedAt)
	return p, mapErr(err)
}

// ListVariantsByProduct returns a product's variants ordered by position.
// The first row carries the product's base price.
func (s *Store) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]Variant, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_id, color_id, size_id, sku, price, stock, position
		FROM product_variants WHERE product_id = $1 ORDER BY position`, productID,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanVariant)
}

// ListVariantsByProducts returns variants for a batch of products, ordered by
// product then position, so callers can resolve base prices in one round trip.
func (s *Store) ListVariantsByProducts(ctx context.Context, productIDs []uuid.UUID) ([]Variant, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_id, color_id, size_id, sku, price, stock, position
		FROM product_variants WHERE product_id = ANY($1) ORDER BY product_id, position`, productIDs,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanVariant)
}

// GetVariant loads a single variant.
func (s *Store) GetVariant(ctx context.Context, id uuid.UUID) (Variant, error) {
	var v Variant
	err := s.Pool.QueryRow(ctx, `
		SELECT id, product_id, color_id, size_id, sku, price, stock, position
		FROM product_variants WHERE id = $1`, id,
	).Scan(&v.ID, &v.ProductID, &v.ColorID, &v.SizeID, &v.SKU, &v.Price, &v.Stock, &v.Position)
	return v, mapErr(err)
}

// ListImagesByProduct returns product images ordered by position.
func (s *Store) ListImagesByProduct(ctx context.Context, productID uuid.UUID) ([]ProductImage, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_id, variant_id, url, position
		FROM product_images WHERE product_id = $1 ORDER BY position`, productID,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (ProductImage, error) {
		var img ProductImage
		err := r.Scan(&img.ID, &img.ProductID, &img.VariantID, &img.URL, &img.Position)
		return img, err
	})
}

// ListRelatedByCategory returns up to limit products sharing a category,
// excluding the given slug.
func (s *Store) ListRelatedByCategory(ctx context.Context, categoryID uuid.UUID, excludeSlug string, limit int32) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, title, slug, description, brand_id, category_id, created_at
		FROM products WHERE category_id = $1 AND slug <> $2
		ORDER BY created_at DESC LIMIT $3`, categoryID, excludeSlug, limit,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

func scanProduct(r pgx.Rows) (Product, error) {
	var p Product
	err := r.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.BrandID, &p.CategoryID, &p.CreatedAt)
	return p, err
}

func scanVariant(r pgx.Rows) (Variant, error) {
	var v Variant
	err := r.Scan(&v.ID, &v.ProductID, &v.ColorID, &v.SizeID, &v.SKU, &v.Price, &v.Stock, &v.Position)
	return v, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
