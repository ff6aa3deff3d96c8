package domain

import (
	"time"
)

// OrderRecord is the persisted form of an order in the trade journal.
type OrderRecord struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Symbol      string    `json:"symbol" gorm:"index"`
	Side        string    `json:"side"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	LimitPrice  string    `json:"limit_price"`
	FilledQty   int64     `json:"filled_qty"`
	FilledPrice string    `json:"filled_price"`
	Status      string    `json:"status" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TradeRecord is one executed trade inside an episode.
type TradeRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EpisodeID string    `json:"episode_id" gorm:"index"`
	Step      int       `json:"step"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Shares    int64     `json:"shares"`
	Price     string    `json:"price"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// EpisodeRecord summarizes one completed episode.
type EpisodeRecord struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	StartDate   time.Time `json:"start_date"`
	Steps       int       `json:"steps"`
	FinalValue  string    `json:"final_value"`
	TotalReward float64   `json:"total_reward"`
	Violations  int       `json:"violations"`
	CreatedAt   time.Time `json:"created_at"`
}
