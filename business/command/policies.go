package command

import (
	"context"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"github.com/go-playground/validator/v10"
)

const RoleAdmin = "admin"

var validate = validator.New()

func invalid(field string, err error) error {
	return fmt.Errorf("%s: %v: %w", field, err, domain.ErrInvalidInput)
}

// ---- validation policies ----

func ValidateGrantPoints(ctx context.Context, cmd Command) error {
	c := cmd.(GrantPoints)

	if err := validate.Var(c.UserID, "required"); err != nil {
		return invalid("user_id", err)
	}
	if c.BasePoints < 0 {
		return fmt.Errorf("base_points must not be negative: %w", domain.ErrInvalidInput)
	}
	if err := validate.Var(c.Description, "required"); err != nil {
		return invalid("description", err)
	}

	return nil
}

func ValidateRedeemReward(ctx context.Context, cmd Command) error {
	c := cmd.(RedeemReward)

	if err := validate.Var(c.UserID, "required"); err != nil {
		return invalid("user_id", err)
	}
	if err := validate.Var(c.ProductID, "required"); err != nil {
		return invalid("product_id", err)
	}

	return nil
}

func ValidateProcessProductScan(ctx context.Context, cmd Command) error {
	c := cmd.(ProcessProductScan)

	if err := validate.Var(c.UserID, "required"); err != nil {
		return invalid("user_id", err)
	}
	if err := validate.Var(c.Code, "required,min=4,max=64"); err != nil {
		return invalid("code", err)
	}

	return nil
}

func ValidateProcessUnauthenticatedClaim(ctx context.Context, cmd Command) error {
	c := cmd.(ProcessUnauthenticatedClaim)

	if err := validate.Var(c.Code, "required,min=4,max=64"); err != nil {
		return invalid("code", err)
	}

	return nil
}

// ---- authorization policies ----

// RequireRole rejects actors without the given role.
func RequireRole(role string) AuthorizationPolicy {
	return func(ctx context.Context, cmd Command) error {
		actor, ok := ActorFromContext(ctx)
		if !ok {
			return fmt.Errorf("no actor on context: %w", domain.ErrUnauthorized)
		}
		if actor.Role != role {
			return fmt.Errorf("role %q required: %w", role, domain.ErrForbidden)
		}
		return nil
	}
}

// RequireSelf rejects a command that targets a user other than the actor,
// unless the actor is an admin.
func RequireSelf(target func(cmd Command) uint) AuthorizationPolicy {
	return func(ctx context.Context, cmd Command) error {
		actor, ok := ActorFromContext(ctx)
		if !ok {
			return fmt.Errorf("no actor on context: %w", domain.ErrUnauthorized)
		}
		if actor.Role == RoleAdmin {
			return nil
		}
		if actor.UserID != target(cmd) {
			return fmt.Errorf("command targets another user: %w", domain.ErrForbidden)
		}
		return nil
	}
}
