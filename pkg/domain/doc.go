/*
Package domain contains the core value types of the statesim engine:
machine definitions, simulation snapshots, history entries and saved runs.

Types here are plain data. Behavior (loading, sending events, undo, replay)
lives in the engine; rendering lives in the presentation packages.
*/
package domain
