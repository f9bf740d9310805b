// Package providers assembles the upstream API clients behind one registry.
//
// The registry is built once from configuration and handed to the resolver
// by dependency injection; there is no global client state. Optional
// upstreams (TheTVDB without a key, the meta-bridge without a base URL) stay
// nil and the resolver skips the walk branches that would need them.
package providers
