package repository

import (
	"context"
	"fmt"

	"winesearcher/parser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WineRepository is the persistence sink. Records are keyed by the
// deterministic wine ID so repeated runs upsert instead of duplicating, and a
// wine's offers are replaced wholesale on every save.
type WineRepository interface {
	SaveWine(ctx context.Context, wine *domain.Wine) error
	SaveWinesBatch(ctx context.Context, wines []*domain.Wine) error
}

type wineRepository struct {
	db *pgxpool.Pool
}

func NewWineRepository(db *pgxpool.Pool) WineRepository {
	return &wineRepository{
		db: db,
	}
}

func (r *wineRepository) SaveWine(ctx context.Context, wine *domain.Wine) error {
	return r.SaveWinesBatch(ctx, []*domain.Wine{wine})
}

func (r *wineRepository) SaveWinesBatch(ctx context.Context, wines []*domain.Wine) error {
	// The same wine can appear under several queries in one batch; the last
	// occurrence wins.
	unique := make(map[string]*domain.Wine, len(wines))
	for _, wine := range wines {
		if wine != nil {
			unique[wine.ID] = wine
		}
	}
	if len(unique) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, wine := range unique {
		if err := saveWineTx(ctx, tx, wine); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wine batch: %w", err)
	}
	return nil
}

func saveWineTx(ctx context.Context, tx pgx.Tx, wine *domain.Wine) error {
	query := `
	INSERT INTO wines (
		id, wine_searcher_id, vintage, name, url, description, region,
		region_image, origin, grape_variety, image, producer, average_price,
		min_price, wine_type, wine_style, offers_count, search_expanded
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (id)
	DO UPDATE SET
		wine_searcher_id = EXCLUDED.wine_searcher_id,
		vintage = EXCLUDED.vintage,
		name = EXCLUDED.name,
		url = EXCLUDED.url,
		description = EXCLUDED.description,
		region = EXCLUDED.region,
		region_image = EXCLUDED.region_image,
		origin = EXCLUDED.origin,
		grape_variety = EXCLUDED.grape_variety,
		image = EXCLUDED.image,
		producer = EXCLUDED.producer,
		average_price = EXCLUDED.average_price,
		min_price = EXCLUDED.min_price,
		wine_type = EXCLUDED.wine_type,
		wine_style = EXCLUDED.wine_style,
		offers_count = EXCLUDED.offers_count,
		search_expanded = EXCLUDED.search_expanded`

	_, err := tx.Exec(ctx, query,
		wine.ID, wine.WineSearcherID, wine.Vintage, wine.Name, wine.URL,
		wine.Description, wine.Region, wine.RegionImage, wine.Origin,
		wine.GrapeVariety, wine.Image, wine.Producer, wine.AveragePrice,
		wine.MinPrice, wine.WineType, wine.WineStyle, wine.OffersCount,
		wine.SearchExpanded,
	)
	if err != nil {
		return fmt.Errorf("failed to save wine %s: %w", wine.ID, err)
	}

	// Replace, not update: offers have no identity beyond their position.
	if _, err := tx.Exec(ctx, `DELETE FROM offers WHERE wine_id = $1`, wine.ID); err != nil {
		return fmt.Errorf("failed to clear offers for wine %s: %w", wine.ID, err)
	}

	for position, offer := range wine.Offers {
		_, err := tx.Exec(ctx, `
		INSERT INTO offers (
			wine_id, position, price, unit_price, description, seller_name,
			url, name, seller_address_region, seller_address_country
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			wine.ID, position, offer.Price, offer.UnitPrice, offer.Description,
			offer.SellerName, offer.URL, offer.Name, offer.SellerAddressRegion,
			offer.SellerAddressCountry,
		)
		if err != nil {
			return fmt.Errorf("failed to save offer for wine %s: %w", wine.ID, err)
		}
	}

	return nil
}
