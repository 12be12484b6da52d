/*
Package domino is an immutable state container built from defaults and mutations.

A Domino keeps the values an application starts with (defaults) apart from the
fields it explicitly changed (mutations). Values are always defaults overlaid
with mutations, then overlaid with computed fields, so any field can be reset
on its own and IsModified tells whether anything differs from the defaults.

# Concept

Every operation returns a new generation; nothing is modified in place. Where
the current generation lives is up to the host: an in-process cell, a slice of
a larger state tree (a lens), or a snapshot store such as Redis or the file
system. A Store reads and writes through a ports.DominoAdapter and holds no
state of its own.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/domino"
		"github.com/aretw0/domino/pkg/domain"
	)

	func main() {
		store := domino.NewLocal(domain.Values{"theme": "light"})

		store.Update(domain.Values{"theme": "dark"})
		fmt.Println(store.Values()["theme"], store.IsModified()) // dark true

		store.Reset()
		fmt.Println(store.Values()["theme"], store.IsModified()) // light false
	}

# Computed fields

AddComputedField derives a field from the rest of the state. The result is
memoized against a hash of its inputs and recomputed only when they change.

	store.AddComputedField("label", func(args domain.ComputeArgs) any {
		return fmt.Sprintf("Theme: %v", args.Values["theme"])
	}, nil)

# Persistence

pkg/session manages dominoes by ID over any ports.SnapshotStore; the memory,
file and Redis stores all pass the same contract suite, and
pkg/persistence/middleware adds encryption and PII masking on top.
*/
package domino
