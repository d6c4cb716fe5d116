package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID with items and returns loaded
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Returns").
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindAll lists sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sale.Sale{}).Preload("Items").Preload("Returns"),
		filter,
	)

	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindByOwner lists sales owned by a user
func (r *GormSaleRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sale.Sale{}).
			Preload("Items").Preload("Returns").
			Where("owner_id = ?", ownerID),
		filter,
	)

	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Save creates or updates a sale with optimistic version checking.
// An update whose stored version moved since the load fails with
// shared.ErrConcurrencyConflict and writes nothing.
func (r *GormSaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&sale.Sale{}).
			Where("id = ?", s.ID).
			Select("version").
			Take(&currentVersion).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.create(tx, s)
		}
		if err != nil {
			return err
		}

		if currentVersion != s.Version {
			return shared.ErrConcurrencyConflict
		}

		s.Version++
		s.UpdatedAt = time.Now()

		result := tx.Model(&sale.Sale{}).
			Where("id = ? AND version = ?", s.ID, currentVersion).
			Updates(map[string]interface{}{
				"customer_name":           s.CustomerName,
				"total_amount":            s.TotalAmount,
				"paid_amount":             s.PaidAmount,
				"payment_state":           s.PaymentState,
				"completion":              s.Completion,
				"completion_requested_at": s.CompletionRequestedAt,
				"completion_decided_at":   s.CompletionDecidedAt,
				"review_notes":            s.ReviewNotes,
				"version":                 s.Version,
				"updated_at":              s.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.saveChildren(tx, s)
	})
}

// create inserts a new sale with its items and returns
func (r *GormSaleRepository) create(tx *gorm.DB, s *sale.Sale) error {
	if err := tx.Omit("Items", "Returns").Create(s).Error; err != nil {
		return err
	}
	return r.saveChildren(tx, s)
}

// saveChildren reconciles the persisted line items and appends new returns.
// Returns are append-only so existing rows are never touched.
func (r *GormSaleRepository) saveChildren(tx *gorm.DB, s *sale.Sale) error {
	currentItemIDs := make([]uuid.UUID, len(s.Items))
	for i, item := range s.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("sale_id = ? AND id NOT IN ?", s.ID, currentItemIDs).
			Delete(&sale.LineItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("sale_id = ?", s.ID).
			Delete(&sale.LineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range s.Items {
		s.Items[i].SaleID = s.ID
		if err := tx.Save(&s.Items[i]).Error; err != nil {
			return err
		}
	}

	for i := range s.Returns {
		s.Returns[i].SaleID = s.ID
		if err := tx.Where("id = ?", s.Returns[i].ID).
			FirstOrCreate(&s.Returns[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a sale with its line items and return records
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&sale.LineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&sale.Return{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&sale.Sale{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&sale.Sale{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, saleSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSaleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("customer_name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "completion":
			query = query.Where("completion = ?", value)
		case "payment_state":
			query = query.Where("payment_state = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sale.SaleRepository = (*GormSaleRepository)(nil)
