package graph

import (
	"context"
	"fmt"
)

// StateGraph is a directed graph of typed nodes. State of type S flows from
// the entry point along edges, one node at a time, until END.
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    state.Count++
//	    return state, nil
//	})
//	g.SetEntryPoint("increment")
//	g.AddEdge("increment", graph.END)
type StateGraph[S any] struct {
	nodes map[string]TypedNode[S]

	edges []Edge

	entryPoint string
}

// TypedNode represents a typed node in the graph.
type TypedNode[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// NewStateGraph creates a new instance of StateGraph
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes: make(map[string]TypedNode[S]),
	}
}

// AddNode adds a new node with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = TypedNode[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// StateRunnable represents a compiled state graph that can be invoked.
// It is safe for concurrent use once compiled.
type StateRunnable[S any] struct {
	graph    *StateGraph[S]
	tracer   *Tracer
	maxSteps int
}

// Compile validates the graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok && e.To != END {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.To)
		}
	}

	return &StateRunnable[S]{
		graph:    g,
		maxSteps: DefaultMaxSteps,
	}, nil
}

// SetTracer sets a tracer for observability.
func (r *StateRunnable[S]) SetTracer(tracer *Tracer) {
	r.tracer = tracer
}

// Invoke executes the compiled state graph with the given input state and
// returns the final state.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	var zero S
	state := initialState

	var graphSpan *TraceSpan
	if r.tracer != nil {
		graphSpan = r.tracer.StartSpan(ctx, TraceEventGraphStart, "graph")
		ctx = ContextWithSpan(ctx, graphSpan)
	}

	current := r.graph.entryPoint
	for steps := 0; current != END; steps++ {
		if steps >= r.maxSteps {
			err := fmt.Errorf("%w: %d", ErrMaxStepsExceeded, r.maxSteps)
			r.endSpan(ctx, graphSpan, err)
			return zero, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			err := fmt.Errorf("%w: %s", ErrNodeNotFound, current)
			r.endSpan(ctx, graphSpan, err)
			return zero, err
		}

		next, err := r.runNode(ctx, node, state)
		if err != nil {
			err = fmt.Errorf("error in node %s: %w", current, err)
			r.endSpan(ctx, graphSpan, err)
			return zero, err
		}
		state = next

		to, err := r.nextNode(current)
		if err != nil {
			r.endSpan(ctx, graphSpan, err)
			return zero, err
		}
		if r.tracer != nil {
			r.tracer.TraceEdgeTraversal(ctx, current, to)
		}
		current = to
	}

	r.endSpan(ctx, graphSpan, nil)
	return state, nil
}

func (r *StateRunnable[S]) runNode(ctx context.Context, node TypedNode[S], state S) (res S, err error) {
	var span *TraceSpan
	if r.tracer != nil {
		span = r.tracer.StartSpan(ctx, TraceEventNodeStart, node.Name)
		ctx = ContextWithSpan(ctx, span)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in node %s: %v", node.Name, p)
		}
		r.endSpan(ctx, span, err)
	}()

	return node.Function(ctx, state)
}

func (r *StateRunnable[S]) endSpan(ctx context.Context, span *TraceSpan, err error) {
	if r.tracer != nil && span != nil {
		r.tracer.EndSpan(ctx, span, err)
	}
}

// nextNode picks the successor of from. With several edges the first one
// added is taken.
func (r *StateRunnable[S]) nextNode(from string) (string, error) {
	for _, edge := range r.graph.edges {
		if edge.From == from {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}
