package command

import (
	"context"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
)

// Command is a request to the economy core, routed by name.
type Command interface {
	Name() string
}

// ValidationPolicy checks command field shape. Failures wrap
// domain.ErrInvalidInput. Policies must be side effect free.
type ValidationPolicy func(ctx context.Context, cmd Command) error

// AuthorizationPolicy checks whether the acting user may run the command.
// Failures wrap domain.ErrForbidden or domain.ErrUnauthorized.
type AuthorizationPolicy func(ctx context.Context, cmd Command) error

// Handler executes the command. All side effects (storage writes, event
// publication) live here, never in policies.
type Handler func(ctx context.Context, cmd Command) (any, error)

// Binding is the declarative routing entry for one command type.
type Binding struct {
	Validators  []ValidationPolicy
	Authorizers []AuthorizationPolicy
	Handler     Handler
}

// Dispatcher routes a command to exactly one handler after its declared
// policies pass. Bindings are registered once at startup; dispatching an
// unbound command is a configuration bug, not user error.
type Dispatcher struct {
	bindings map[string]Binding
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		bindings: make(map[string]Binding),
	}
}

func (d *Dispatcher) Register(name string, b Binding) {
	if b.Handler == nil {
		panic(fmt.Sprintf("command %q registered without a handler", name))
	}
	if _, exists := d.bindings[name]; exists {
		panic(fmt.Sprintf("command %q registered twice", name))
	}
	d.bindings[name] = b
}

// Handle runs validation policies, then authorization policies, in
// declaration order; the first failure aborts before any side effect. Only
// then does the handler run.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) (any, error) {
	b, ok := d.bindings[cmd.Name()]
	if !ok {
		logger.Error("no handler bound for command", "command", cmd.Name())
		return nil, fmt.Errorf("command %q: %w", cmd.Name(), domain.ErrUnroutable)
	}

	for _, validate := range b.Validators {
		if err := validate(ctx, cmd); err != nil {
			return nil, err
		}
	}

	for _, authorize := range b.Authorizers {
		if err := authorize(ctx, cmd); err != nil {
			return nil, err
		}
	}

	return b.Handler(ctx, cmd)
}
