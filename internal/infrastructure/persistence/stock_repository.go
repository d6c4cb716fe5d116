package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByProduct finds the stock record for a product
func (r *GormStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProductForUpdate finds the stock record with a row-level lock held
// until the surrounding transaction ends. Outside a transaction this behaves
// like FindByProduct.
func (r *GormStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll lists stock records matching the filter
func (r *GormStockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockItem, error) {
	var items []stock.StockItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockItem{}),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a stock record with optimistic version checking
func (r *GormStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists bool
		if err := tx.Model(&stock.StockItem{}).
			Select("count(*) > 0").
			Where("id = ?", item.ID).
			Find(&exists).Error; err != nil {
			return err
		}

		if !exists {
			return tx.Create(item).Error
		}

		// The aggregate already incremented its version on mutation, so the
		// stored row must still carry the previous one.
		result := tx.Model(&stock.StockItem{}).
			Where("id = ? AND version = ?", item.ID, item.Version-1).
			Updates(map[string]interface{}{
				"product_name":       item.ProductName,
				"remaining_quantity": item.RemainingQuantity,
				"version":            item.Version,
				"updated_at":         item.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// Count counts stock records matching the filter
func (r *GormStockItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&stock.StockItem{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStockItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, stockSortFields, "product_name")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("product_name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "in_stock":
			if inStock, ok := value.(bool); ok && inStock {
				query = query.Where("remaining_quantity > 0")
			}
		case "updated_after":
			if t, ok := value.(time.Time); ok {
				query = query.Where("updated_at >= ?", t)
			}
		}
	}

	return query
}

// Ensure GormStockItemRepository implements StockItemRepository
var _ stock.StockItemRepository = (*GormStockItemRepository)(nil)
