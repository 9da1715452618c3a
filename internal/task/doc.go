// Package task provides the background task runner that executes
// generation runs asynchronously from the review API. Tasks live in
// memory; clients poll their status through the registry.
package task
