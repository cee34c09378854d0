// Package types defines the Stride domain entities (goals, tasks, summaries),
// the Gateway and Planner interfaces, configuration, and the standard error
// taxonomy shared by every layer of the storage core.
//
// The package holds no behavior beyond entity validation and cell-level
// serialization helpers; all remote access lives behind the Gateway
// interface and is implemented elsewhere.
package types
