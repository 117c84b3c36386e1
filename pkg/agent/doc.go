// Package agent executes contextualized requests against a language-model
// backend. The Executor assembles the final prompt from a resolved template,
// persisted memory, and session history, calls the provider with retry and
// backoff, and writes results back into session state, memory, and usage
// metrics. Providers adapt the abstract request/response shapes to concrete
// vendor SDKs.
package agent
