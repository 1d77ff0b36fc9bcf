package dsl

import skillet "github.com/reoring/skillet"

// Opt sets an optional constraint on a node. Options that do not apply to
// the node kind are carried but ignored by consumers.
type Opt func(*skillet.Node)

// Format sets the string format (date-time, email, uuid, ...).
func Format(f string) Opt { return func(n *skillet.Node) { n.Format = f } }

// Pattern sets the string pattern.
func Pattern(p string) Opt { return func(n *skillet.Node) { n.Pattern = p } }

// Minimum sets the inclusive lower bound of a number.
func Minimum(v float64) Opt { return func(n *skillet.Node) { n.Bounds.Minimum = &v } }

// Maximum sets the inclusive upper bound of a number.
func Maximum(v float64) Opt { return func(n *skillet.Node) { n.Bounds.Maximum = &v } }

// ExclusiveMinimum sets the exclusive lower bound of a number.
func ExclusiveMinimum(v float64) Opt { return func(n *skillet.Node) { n.Bounds.ExclusiveMinimum = &v } }

// ExclusiveMaximum sets the exclusive upper bound of a number.
func ExclusiveMaximum(v float64) Opt { return func(n *skillet.Node) { n.Bounds.ExclusiveMaximum = &v } }

// MultipleOf requires a number to be a multiple of v.
func MultipleOf(v float64) Opt { return func(n *skillet.Node) { n.Bounds.MultipleOf = &v } }

// MinItems sets the minimum array length.
func MinItems(v int) Opt { return func(n *skillet.Node) { n.MinItems = &v } }

// MaxItems sets the maximum array length.
func MaxItems(v int) Opt { return func(n *skillet.Node) { n.MaxItems = &v } }
