package command

import (
	"context"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

const (
	NameGrantPoints                 = "grant_points"
	NameRedeemReward                = "redeem_reward"
	NameProcessProductScan          = "process_product_scan"
	NameProcessUnauthenticatedClaim = "process_unauthenticated_claim"
)

type GrantPoints struct {
	UserID         uint
	BasePoints     int64
	Description    string
	TempMultiplier float64
}

func (GrantPoints) Name() string { return NameGrantPoints }

type RedeemReward struct {
	UserID    uint
	ProductID uint
}

func (RedeemReward) Name() string { return NameRedeemReward }

type ProcessProductScan struct {
	UserID uint
	Code   string
	Meta   domain.EventMeta
}

func (ProcessProductScan) Name() string { return NameProcessProductScan }

type ProcessUnauthenticatedClaim struct {
	Code string
}

func (ProcessUnauthenticatedClaim) Name() string { return NameProcessUnauthenticatedClaim }

// ---- actor context ----

type ctxKey string

const actorKey ctxKey = "actor"

// Actor is the authenticated principal a command runs as.
type Actor struct {
	UserID uint
	Role   string
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}
