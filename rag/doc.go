// Package rag holds the document model shared by the retrieval side of
// medichat.
//
// A Document is one chunk returned by the vector index. Chunks come from
// langchaingo vector stores as schema.Document values and are converted with
// FromSchemaDocuments so the rest of the service does not depend on the
// langchaingo schema directly.
//
// Sub-packages:
//
// rag/embedding
// Embedding providers (HuggingFace inference, Gemini, deterministic mock).
//
// rag/store
// Vector index backends (Pinecone, in-memory cosine store).
//
// rag/retriever
// Fixed-policy similarity retriever used by the answer chain.
//
// rag/loader
// JSON-lines loader used to seed the in-memory store.
package rag
