// Package chain answers a question by retrieving context and asking the model.
//
// The chain is a two-node graph: "retrieve" fetches chunks for the question,
// "generate" stuffs them into the prompt and calls the model. Nothing is
// retried; the caller's context bounds the whole run.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/medichat/graph"
	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/prompt"
	"github.com/smallnest/medichat/rag"
)

// Node names.
const (
	NodeRetrieve = "retrieve"
	NodeGenerate = "generate"
)

// ErrEmptyResponse is returned when the model returns no choices.
var ErrEmptyResponse = errors.New("empty response from model")

// State flows through the answer graph.
type State struct {
	Input     string
	Documents []rag.Document
	Messages  []prompt.Message
	Answer    string
}

// Response is the result of one question.
type Response struct {
	Answer  string         `json:"answer"`
	Context []rag.Document `json:"context"`
}

// Config wires the chain's collaborators.
type Config struct {
	Retriever rag.Retriever
	LLM       llms.Model
	// Template defaults to prompt.MustNew("").
	Template *prompt.Template
	// CallOptions are passed to every GenerateContent call.
	CallOptions []llms.CallOption
	// Hooks receive graph trace spans.
	Hooks  []graph.TraceHook
	Logger log.Logger
}

// Chain is safe for concurrent use.
type Chain struct {
	retriever   rag.Retriever
	llm         llms.Model
	template    *prompt.Template
	callOptions []llms.CallOption
	logger      log.Logger

	graph    *graph.StateGraph[State]
	runnable *graph.StateRunnable[State]
}

// New builds and compiles the answer graph.
func New(cfg Config) (*Chain, error) {
	if cfg.Retriever == nil {
		return nil, errors.New("chain: retriever is required")
	}
	if cfg.LLM == nil {
		return nil, errors.New("chain: llm is required")
	}
	if cfg.Template == nil {
		cfg.Template = prompt.MustNew("")
	}

	c := &Chain{
		retriever:   cfg.Retriever,
		llm:         cfg.LLM,
		template:    cfg.Template,
		callOptions: cfg.CallOptions,
		logger:      log.OrDefault(cfg.Logger),
	}

	g := graph.NewStateGraph[State]()
	g.AddNode(NodeRetrieve, "Retrieve context chunks for the question", c.retrieveNode)
	g.AddNode(NodeGenerate, "Answer the question from the retrieved context", c.generateNode)
	g.SetEntryPoint(NodeRetrieve)
	g.AddEdge(NodeRetrieve, NodeGenerate)
	g.AddEdge(NodeGenerate, graph.END)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile answer graph: %w", err)
	}
	hooks := append([]graph.TraceHook{graph.LoggingHook(c.logger)}, cfg.Hooks...)
	runnable.SetTracer(graph.NewTracer(hooks...))

	c.graph = g
	c.runnable = runnable
	return c, nil
}

// Invoke answers input.
func (c *Chain) Invoke(ctx context.Context, input string) (*Response, error) {
	out, err := c.runnable.Invoke(ctx, State{Input: input})
	if err != nil {
		return nil, err
	}
	return &Response{
		Answer:  out.Answer,
		Context: out.Documents,
	}, nil
}

// Mermaid renders the answer graph.
func (c *Chain) Mermaid() string {
	return c.graph.DrawMermaid()
}

func (c *Chain) retrieveNode(ctx context.Context, state State) (State, error) {
	docs, err := c.retriever.Retrieve(ctx, state.Input)
	if err != nil {
		return state, fmt.Errorf("retrieval failed: %w", err)
	}
	state.Documents = docs
	return state, nil
}

func (c *Chain) generateNode(ctx context.Context, state State) (State, error) {
	contents := make([]string, len(state.Documents))
	for i, doc := range state.Documents {
		contents[i] = doc.Content
	}

	messages, err := c.template.Render(prompt.JoinContext(contents), state.Input)
	if err != nil {
		return state, err
	}
	state.Messages = messages

	response, err := c.llm.GenerateContent(ctx, prompt.ToLLM(messages), c.callOptions...)
	if err != nil {
		return state, fmt.Errorf("generation failed: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return state, ErrEmptyResponse
	}

	state.Answer = response.Choices[0].Content
	c.logger.Debug("generated %d-character answer from %d documents", len(state.Answer), len(state.Documents))
	return state, nil
}
