package executor

import (
	"context"
	"errors"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"

	eventbus "github.com/hanpama/graphresolve/internal/eventbus"
	events "github.com/hanpama/graphresolve/internal/events"
	language "github.com/hanpama/graphresolve/internal/language"
	logging "github.com/hanpama/graphresolve/internal/logging"
	reqid "github.com/hanpama/graphresolve/internal/reqid"
	schema "github.com/hanpama/graphresolve/internal/schema"
	value "github.com/hanpama/graphresolve/internal/value"
)

type Executor struct {
	schema *schema.Schema
	opts   options
}

func New(sch *schema.Schema, opts ...Option) *Executor {
	e := &Executor{schema: sch}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

// Request is one execution of an already parsed document.
type Request struct {
	Document      *language.QueryDocument
	OperationName string
	Variables     map[string]any
	// Root is the value the operation's root selection set is resolved on.
	Root Resolvable
	// Info is passed unchanged to every resolver call.
	Info any
	// AppContext is exposed to resolvers through ExecutionContext.AppContext.
	AppContext any
}

// ExecuteRequest runs the operation with no resolver info or application
// context.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	root Resolvable,
) (*ExecutionResult, error) {
	return e.Execute(ctx, Request{
		Document:      document,
		OperationName: operationName,
		Variables:     variableValues,
		Root:          root,
	})
}

// Execute selects the operation, coerces variables and resolves the root
// selection set. Field errors are reported in the result. A returned error
// is always a *ContractViolation and means no result could be trusted.
func (e *Executor) Execute(ctx context.Context, req Request) (res *ExecutionResult, err error) {
	operation := getOperation(req.Document, req.OperationName)
	if operation == nil {
		return rejected(gqlerror.Errorf("operation not found")), nil
	}

	var rootType string
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.QueryType
	case language.Mutation:
		rootType = e.schema.MutationType
	case language.Subscription:
		rootType = e.schema.SubscriptionType
	default:
		return rejected(gqlerror.Errorf("unsupported operation type: %s", operation.Operation)), nil
	}
	if rootType == "" || e.schema.ConcreteTypeByName(rootType) == nil {
		return rejected(gqlerror.Errorf("root type not found for %s operation", operation.Operation)), nil
	}

	coerced, cerr := coerceVariableValues(e.schema, operation, req.Variables)
	if cerr != nil {
		return rejected(&gqlerror.Error{Err: cerr, Message: cerr.Error()}), nil
	}

	ctx, rid := reqid.Ensure(ctx)
	logger := e.opts.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.WithRequestID(rid)

	state := &executionState{
		ctx:        ctx,
		registry:   e.schema,
		fragments:  req.Document.Fragments,
		variables:  coerced,
		appContext: req.AppContext,
		logger:     logger,
		opts:       e.opts,
	}
	opType := string(operation.Operation)
	start := time.Now()
	eventbus.Publish(ctx, events.ExecutionStart{OperationName: operation.Name, OperationType: opType})

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cv, ok := r.(*ContractViolation)
		if !ok {
			panic(r)
		}
		logger.Error("execution aborted", "operation", operation.Name, "error", cv.Error())
		eventbus.Publish(ctx, events.ExecutionFinish{
			OperationName: operation.Name,
			OperationType: opType,
			Fatal:         cv,
			Duration:      time.Since(start),
		})
		res, err = nil, cv
	}()

	rootContext := newRootContext(state, rootType, operation.SelectionSet, operation.Position)
	data, rerr := Resolve(req.Root, req.Info, operation.SelectionSet, rootContext)
	if rerr != nil {
		if isUnsupported(rerr) {
			violate(rerr, "root value cannot resolve a selection set")
		}
		rootContext.PushError(rerr)
		data = value.Null()
	}

	res = &ExecutionResult{Data: data, Errors: state.snapshotErrors(), executed: true}
	sortErrors(res.Errors)

	errs := make([]error, len(res.Errors))
	for i, ge := range res.Errors {
		errs[i] = ge
	}
	eventbus.Publish(ctx, events.ExecutionFinish{
		OperationName: operation.Name,
		OperationType: opType,
		Outcome:       string(res.Outcome()),
		Errors:        errs,
		Duration:      time.Since(start),
	})
	return res, nil
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if document == nil {
		return nil
	}
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

// IsContractViolation reports whether err aborted an execution.
func IsContractViolation(err error) bool { return errors.Is(err, ErrContractViolation) }
