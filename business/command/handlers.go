package command

import (
	"context"

	"github.com/Anwarisbased/laravelCR-sub000/business/claim"
	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

// PointsService is the slice of the ledger the dispatcher needs.
type PointsService interface {
	Grant(ctx context.Context, userID uint, basePoints int64, description string, tempMultiplier float64) (int64, int64, error)
	Redeem(ctx context.Context, userID uint, productID uint) (domain.Order, error)
}

// ClaimService handles reward-code scans and unauthenticated claim tokens.
type ClaimService interface {
	ProcessScan(ctx context.Context, userID uint, code string, meta domain.EventMeta) (claim.ScanResult, error)
	IssueClaimToken(ctx context.Context, code string) (string, error)
}

// GrantResult is returned by the grant_points handler.
type GrantResult struct {
	PointsGranted int64 `json:"points_granted"`
	NewBalance    int64 `json:"new_balance"`
}

// ClaimTokenResult is returned by the unauthenticated claim handler.
type ClaimTokenResult struct {
	ClaimToken string `json:"claim_token"`
}

// RegisterBindings wires every command to its policies and handler.
// Called once at startup, before the dispatcher serves traffic.
func RegisterBindings(d *Dispatcher, points PointsService, claims ClaimService) {
	d.Register(NameGrantPoints, Binding{
		Validators:  []ValidationPolicy{ValidateGrantPoints},
		Authorizers: []AuthorizationPolicy{RequireRole(RoleAdmin)},
		Handler: func(ctx context.Context, cmd Command) (any, error) {
			c := cmd.(GrantPoints)
			granted, balance, err := points.Grant(ctx, c.UserID, c.BasePoints, c.Description, c.TempMultiplier)
			if err != nil {
				return nil, err
			}
			return GrantResult{PointsGranted: granted, NewBalance: balance}, nil
		},
	})

	d.Register(NameRedeemReward, Binding{
		Validators: []ValidationPolicy{ValidateRedeemReward},
		Authorizers: []AuthorizationPolicy{
			RequireSelf(func(cmd Command) uint { return cmd.(RedeemReward).UserID }),
		},
		Handler: func(ctx context.Context, cmd Command) (any, error) {
			c := cmd.(RedeemReward)
			return points.Redeem(ctx, c.UserID, c.ProductID)
		},
	})

	d.Register(NameProcessProductScan, Binding{
		Validators: []ValidationPolicy{ValidateProcessProductScan},
		Authorizers: []AuthorizationPolicy{
			RequireSelf(func(cmd Command) uint { return cmd.(ProcessProductScan).UserID }),
		},
		Handler: func(ctx context.Context, cmd Command) (any, error) {
			c := cmd.(ProcessProductScan)
			return claims.ProcessScan(ctx, c.UserID, c.Code, c.Meta)
		},
	})

	// No authorizers: the caller has no session yet. The token it gets
	// back is only redeemable after registration or login.
	d.Register(NameProcessUnauthenticatedClaim, Binding{
		Validators: []ValidationPolicy{ValidateProcessUnauthenticatedClaim},
		Handler: func(ctx context.Context, cmd Command) (any, error) {
			c := cmd.(ProcessUnauthenticatedClaim)
			token, err := claims.IssueClaimToken(ctx, c.Code)
			if err != nil {
				return nil, err
			}
			return ClaimTokenResult{ClaimToken: token}, nil
		},
	})
}
