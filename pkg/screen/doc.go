// Package screen turns JavaScript boolean expressions into pipeline
// predicates using goja, and loads named screens from YAML files.
//
//	s, err := screen.Compile("up", "close > open")
//	matches, err := pipeline.Run(ctx, 4, "DowJones.csv", s.Predicate())
package screen
