/*
Package ports defines the boundary interfaces of the statesim engine.

Adapters (in-memory, Redis) implement these interfaces; the engine and the
CLI/HTTP surfaces depend only on the contracts, never on a concrete backend.
*/
package ports
