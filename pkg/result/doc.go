/*
Package result provides a two-variant success/failure value and TryCatch,
which turns both returned errors and panics into a failed Result.

It is the exception-safe building block of the storage wrappers: a failing
backend never escapes as a panic, it becomes a value the caller can Match on.
*/
package result
