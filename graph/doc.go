// Package graph is a small typed state-graph engine.
//
// A StateGraph[S] holds named nodes that transform a state value of type S
// and the edges between them. Compile validates the wiring and returns a
// StateRunnable that walks the graph sequentially from the entry point to
// END.
//
//	g := graph.NewStateGraph[State]()
//	g.AddNode("retrieve", "fetch context", retrieve)
//	g.AddNode("generate", "call the model", generate)
//	g.SetEntryPoint("retrieve")
//	g.AddEdge("retrieve", "generate")
//	g.AddEdge("generate", graph.END)
//
//	runnable, err := g.Compile()
//	if err != nil {
//		return err
//	}
//	runnable.SetTracer(graph.NewTracer(graph.LoggingHook(logger)))
//	out, err := runnable.Invoke(ctx, State{Input: "What is diabetes?"})
//
// A Tracer reports graph, node and edge spans to registered hooks.
package graph
