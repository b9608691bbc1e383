// Package embedding converts free text into fixed-length numeric vectors via
// an OpenAI-compatible embeddings endpoint.
//
// The Provider interface hides the HTTP transport; Client is the facade the
// rest of the service consumes. Configuration comes from the environment
// (EMBEDDING_API_KEY, EMBEDDING_ENDPOINT, EMBEDDING_MODEL) and is validated
// at construction time so that a misconfigured provider fails before the
// first billable call. Calls are not retried: a transport failure or non-2xx
// status aborts the containing operation.
package embedding
