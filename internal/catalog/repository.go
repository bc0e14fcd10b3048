// internal/catalog/repository.go

// Package catalog is the data acquisition layer. It supplies raw product
// batches already scoped to a partner, category and minimum quantity; the
// pipeline downstream never repeats that filtering.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"

	"shoe-recommender/internal/common/config"
	"shoe-recommender/internal/common/errors"
	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/models"
)

const productQuery = `
	SELECT product_id, product_name, partner_id, category,
	       size, color, quantity, options, vendor, metadata
	FROM products
	WHERE partner_id = $1 AND category = $2 AND quantity >= $3`

// Repository fetches raw product rows from PostgreSQL.
type Repository struct {
	db     *sql.DB
	cfg    config.CatalogConfig
	logger logger.Logger
}

func NewRepository(db *sql.DB, cfg config.CatalogConfig, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// FetchProducts loads the configured product batch. Nullable text columns
// degrade to empty values; blob columns stay unparsed for the normalizer.
func (r *Repository) FetchProducts(ctx context.Context) ([]models.RawProduct, error) {
	rows, err := r.db.QueryContext(ctx, productQuery,
		r.cfg.PartnerID, r.cfg.Category, r.cfg.MinQuantity)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewCatalogQueryTimeoutError(err.Error())
		}
		return nil, errors.NewCatalogQueryFailedError(err.Error())
	}
	defer rows.Close()

	var products []models.RawProduct
	for rows.Next() {
		var (
			p                   models.RawProduct
			size, color, vendor sql.NullString
			options, metadata   []byte
		)
		if err := rows.Scan(
			&p.ProductID, &p.ProductName, &p.PartnerID, &p.Category,
			&size, &color, &p.Quantity, &options, &vendor, &metadata,
		); err != nil {
			return nil, errors.NewCatalogQueryFailedError(err.Error())
		}
		p.Size = size.String
		p.Color = color.String
		p.Vendor = vendor.String
		p.Options = json.RawMessage(options)
		p.Metadata = json.RawMessage(metadata)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogQueryFailedError(err.Error())
	}

	r.logger.Info("catalog batch fetched", map[string]interface{}{
		"partnerId": r.cfg.PartnerID,
		"category":  r.cfg.Category,
		"rows":      len(products),
	})

	return products, nil
}
