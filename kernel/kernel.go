// Copyright 2026 Kiln ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernel defines kernel records: declared argument schemas, compiled
// artifacts, and the compiler boundary backends implement.
package kernel

import "github.com/kiln-ml/kiln/internal/kernel"

// ArgKind tags one position in a kernel's argument schema.
type ArgKind = kernel.ArgKind

// Argument kinds.
const (
	Primitive = kernel.Primitive
	Template  = kernel.Template
	AnyArray  = kernel.AnyArray
)

// Arg is one entry in a kernel's declared argument schema.
type Arg = kernel.Arg

// Def is a user-authored kernel definition.
type Def = kernel.Def

// Artifact is one compiled variant of a kernel.
type Artifact = kernel.Artifact

// Compiler turns a definition plus concrete arguments into an artifact.
type Compiler = kernel.Compiler

// NewDef creates a kernel definition with the given ordered argument schema.
func NewDef(name, source, entry string, args []Arg) (*Def, error) {
	return kernel.NewDef(name, source, entry, args)
}
