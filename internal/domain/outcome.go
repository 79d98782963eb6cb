package domain

import (
	"github.com/arbuzhub/casino-backend/internal/domain/gamerule"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/crypto"
)

// OutcomeSource draws one outcome token for a game. The server-side source is
// uniform over the game's token domain; transports that roll on the client
// side bypass it by sending tokens with the bet.
type OutcomeSource interface {
	Draw(game entity.GameKind) int
}

type randomOutcomeSource struct{}

func NewRandomOutcomeSource() *randomOutcomeSource {
	return &randomOutcomeSource{}
}

func (s *randomOutcomeSource) Draw(game entity.GameKind) int {
	min, max := gamerule.TokenDomain(game)
	return crypto.RandRange(min, max+1)
}
