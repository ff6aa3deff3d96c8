package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vnquant/internal/domain"
)

// Journal persists orders, trades, and episode results to SQLite.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (or creates) the journal database at path.
func NewJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// Pure Go SQLite driver
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&domain.OrderRecord{}, &domain.TradeRecord{}, &domain.EpisodeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Journal{db: db}, nil
}

// SaveOrder upserts the persisted form of an order.
func (j *Journal) SaveOrder(order *domain.Order) error {
	record := domain.OrderRecord{
		ID:          order.ID,
		Symbol:      order.Symbol,
		Side:        string(order.Side),
		Type:        string(order.Type),
		Quantity:    order.Quantity,
		LimitPrice:  order.LimitPrice.String(),
		FilledQty:   order.FilledQty,
		FilledPrice: order.FilledPrice.String(),
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	return j.db.Save(&record).Error
}

// GetOrder retrieves a persisted order by id. Not found is not an error.
func (j *Journal) GetOrder(id string) (*domain.OrderRecord, error) {
	var record domain.OrderRecord
	err := j.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

// ListOrdersByStatus returns all persisted orders in a given status.
func (j *Journal) ListOrdersByStatus(status domain.OrderStatus) ([]domain.OrderRecord, error) {
	var records []domain.OrderRecord
	err := j.db.Where("status = ?", string(status)).Find(&records).Error
	return records, err
}

// SaveTrade appends one executed trade for an episode step.
func (j *Journal) SaveTrade(episodeID string, step int, trade domain.Trade) error {
	record := domain.TradeRecord{
		EpisodeID: episodeID,
		Step:      step,
		Symbol:    trade.Symbol,
		Side:      string(trade.Side),
		Shares:    trade.Shares,
		Price:     trade.Price.String(),
		Value:     trade.Value.String(),
		CreatedAt: time.Now().UTC(),
	}
	return j.db.Create(&record).Error
}

// ListTrades returns all trades of one episode in step order.
func (j *Journal) ListTrades(episodeID string) ([]domain.TradeRecord, error) {
	var records []domain.TradeRecord
	err := j.db.Where("episode_id = ?", episodeID).Order("step asc, id asc").Find(&records).Error
	return records, err
}

// SaveEpisode persists an episode summary.
func (j *Journal) SaveEpisode(record *domain.EpisodeRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return j.db.Save(record).Error
}

// ListEpisodes returns all episode summaries, newest first.
func (j *Journal) ListEpisodes() ([]domain.EpisodeRecord, error) {
	var records []domain.EpisodeRecord
	err := j.db.Order("created_at desc").Find(&records).Error
	return records, err
}
