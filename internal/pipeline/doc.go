// Package pipeline runs a fixed sequence of named steps against a target.
//
// A page audit is such a sequence: navigate, analyze, write the raw
// artifact, tally the result. Each step receives the same target value and
// may store data on it for the steps that follow. Steps are added in order
// and the first failing step stops the sequence.
package pipeline
