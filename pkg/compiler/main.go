// Package compiler translates mindc scripts into processor logic text for a
// single-counter target with no call stack.
//
// Pipeline: source → Lex → SplitStatements → Parse → Lower → Render → logic text
//
// Each statement is compiled on its own. The only state shared between
// statements is the read-only FunctionTable, which must hold every callee's
// entry offset before the first statement that calls it is lowered.
package compiler
