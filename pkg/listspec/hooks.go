package listspec

import (
	"context"
	"fmt"

	"github.com/SecondBureau/adminsgrid/pkg/common"
	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// HookType defines the type of hook to execute
type HookType string

const (
	// List operation hooks
	BeforeList HookType = "before_list"
	AfterList  HookType = "after_list"

	// BeforeScan fires after the query is fully assembled, right before
	// row scanning. Use it to inspect or adjust the final query chain.
	BeforeScan HookType = "before_scan"

	// Bulk destroy hooks
	BeforeBulkDelete HookType = "before_bulk_delete"
	AfterBulkDelete  HookType = "after_bulk_delete"
)

// HookContext contains all the data available to a hook
type HookContext struct {
	Context context.Context
	Entity  *fieldspec.Entity
	Request *ListRequest

	// Query chain - allows hooks to modify the select query before execution
	Query common.SelectQuery

	// Condition and sort as resolved for this invocation
	Condition CompiledCondition
	Sort      ResolvedSort

	// Result and Error are populated for after hooks
	Result interface{}
	Error  error

	// BulkIDs holds the id list on the bulk destroy path
	BulkIDs []string

	// Allow hooks to abort the operation
	Abort        bool
	AbortMessage string
	AbortCode    int

	// Tx provides database access for hooks that need side queries
	Tx common.Database
}

// HookFunc is the signature for hook functions. Returning an error aborts
// the operation.
type HookFunc func(*HookContext) error

// HookRegistry manages all registered hooks
type HookRegistry struct {
	hooks map[HookType][]HookFunc
}

// NewHookRegistry creates a new hook registry
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		hooks: make(map[HookType][]HookFunc),
	}
}

// Register adds a new hook for the specified hook type
func (r *HookRegistry) Register(hookType HookType, hook HookFunc) {
	if r.hooks == nil {
		r.hooks = make(map[HookType][]HookFunc)
	}
	r.hooks[hookType] = append(r.hooks[hookType], hook)
	logger.Info("Registered hook for %s (total: %d)", hookType, len(r.hooks[hookType]))
}

// Execute runs all hooks for the specified type in order. If any hook
// returns an error or sets Abort, execution stops.
func (r *HookRegistry) Execute(hookType HookType, ctx *HookContext) error {
	hooks, exists := r.hooks[hookType]
	if !exists || len(hooks) == 0 {
		return nil
	}
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			logger.Error("Hook %s[%d] failed: %v", hookType, i, err)
			return fmt.Errorf("hook %s failed: %w", hookType, err)
		}
		if ctx.Abort {
			logger.Warn("Hook %s[%d] aborted operation: %s", hookType, i, ctx.AbortMessage)
			return nil
		}
	}
	return nil
}

// Scope restricts every query the assembler issues to an authorized
// subset. The assembler never inspects the restriction, it only applies
// it; a nil Scope means unrestricted.
type Scope interface {
	Apply(q common.SelectQuery) common.SelectQuery
}

// ScopeFunc adapts a function to the Scope interface.
type ScopeFunc func(q common.SelectQuery) common.SelectQuery

func (f ScopeFunc) Apply(q common.SelectQuery) common.SelectQuery { return f(q) }

// ScopeProvider derives the authorization scope for a request, typically
// from credentials carried in the context. Returning a nil Scope leaves
// the query unrestricted; returning an error rejects the request.
type ScopeProvider interface {
	ScopeFor(ctx context.Context, entity *fieldspec.Entity, operation string) (Scope, error)
}
