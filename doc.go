// Medichat - a retrieval-augmented chatbot for medical questions.
//
// Medichat answers a question by fetching the three most similar chunks from a
// vector index (Pinecone, or an in-memory index for local runs) and asking
// Gemini to answer from those chunks only. Embeddings, vector search and
// generation are external services consumed through langchaingo.
//
// # Quick Start
//
// Set the service keys, then start the server:
//
//	export PINECONE_API_KEY=...
//	export GOOGLE_API_KEY=...
//	export HF_TOKEN=...
//	go run ./cmd/medichat serve
//
// Open http://localhost:8080/ for the chat page, or query the endpoints:
//
//	curl 'http://localhost:8080/test-retrieval?query=What+is+asthma%3F'
//	curl -d 'msg=What is diabetes?' http://localhost:8080/get
//
// For a local run without Pinecone or HuggingFace, use the in-memory index
// and the deterministic embedder:
//
//	VECTOR_STORE=memory MEMORY_SEED_FILE=chunks.jsonl EMBEDDING_PROVIDER=mock \
//		go run ./cmd/medichat serve
//
// # Package Structure
//
//	cmd/medichat   CLI: serve, retrieve <query>
//	config         settings from env, .env and --config (viper)
//	app            builds the shared components from a Config
//	server         HTTP routes, middleware and the chat page
//	chain          retrieve -> generate answer graph
//	graph          minimal typed state graph with tracing hooks
//	prompt         system + human chat prompt
//	llms/gemini    Gemini chat model
//	rag            Document type and langchaingo adapters
//	rag/embedding  HuggingFace, Google AI and mock embedders
//	rag/store      Pinecone and in-memory vector stores
//	rag/retriever  top-k similarity retriever
//	rag/loader     JSON-lines document loader
//	metrics        Prometheus collectors
//	log            golog-backed logger
//
// # HTTP Routes
//
//	GET      /                the chat page
//	GET      /test-retrieval  retrieval only; ?query= defaults to "What is diabetes?"
//	GET|POST /get             form field msg; replies with the answer as text
//	GET      /healthz         liveness
//	GET      /metrics         Prometheus exposition
//
// # Configuration
//
// Every setting is an environment variable; the same names in lower case may
// appear in a .env file or a --config file. See package config for the list.
package medichat // import "github.com/smallnest/medichat"
