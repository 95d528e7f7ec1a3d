package domain

import (
	"context"
	"time"
)

type MatchStatus string

const (
	MatchPending MatchStatus = "PENDING"
	MatchDone    MatchStatus = "DONE"
	MatchLose    MatchStatus = "LOSE"
)

// Match is an append-only ledger row. Player2 is either a registered user
// (Player2ID) or a guest (Player2Name), never both.
type Match struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Player1ID    uint        `gorm:"index;not null" json:"player1Id"`
	Player2ID    *uint       `gorm:"index" json:"player2Id"`
	Player2Name  *string     `gorm:"size:64" json:"player2Name"`
	Player1Score int         `gorm:"not null" json:"player1Score"`
	Player2Score int         `gorm:"not null" json:"player2Score"`
	Status       MatchStatus `gorm:"size:16;not null" json:"status"`
	PlayedAt     time.Time   `gorm:"index;not null" json:"playedAt"`

	Player1 *User `gorm:"foreignKey:Player1ID" json:"-"`
	Player2 *User `gorm:"foreignKey:Player2ID" json:"-"`

	Player1Info *UserSummary `gorm:"-" json:"player1"`
	Player2Info *UserSummary `gorm:"-" json:"player2"`
}

func (Match) TableName() string { return "matches" }

func (m *Match) Hydrate() {
	m.Player1Info = m.Player1.Summary()
	m.Player2Info = m.Player2.Summary()
}

type MatchRepository interface {
	// Record inserts m and applies the outcome to the registered players' stats atomically.
	Record(ctx context.Context, m *Match) error
	List(ctx context.Context) ([]Match, error)
	ForPlayer(ctx context.Context, playerID uint) ([]Match, error)
}
