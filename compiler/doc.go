/*

Process of compilation

Abstract Syntax Tree (ast) ->
	front ->
Intermediate Representation (ir) ->
	back ->
Assembly Text (riscv)

Intermediate Representation (ir) ->
	llvm ->
LLVM Module Text

Every stage fails as a whole: unsupported constructs wrap ir.ErrUnsupported,
broken input wraps ir.ErrMalformed, and no partial output is returned.

*/
package compiler
