/*
Package observability provides ready-made lifecycle hook sets for monitoring
a simulation engine: structured-log hooks and Prometheus metric hooks.

Hook sets compose: Combine merges several LifecycleHooks values so logging
and metrics can be attached independently.
*/
package observability
