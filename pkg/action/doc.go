/*
Package action evaluates transition action expressions.

An action is a small imperative script mutating the machine context, e.g.:

	context.water -= 10
	context.cups += 1; context.last = input.size

Statements are separated by ';' or newlines. Each statement assigns to a
path rooted at `context` using `=`, `+=`, `-=`, `*=` or `/=`. Expressions
combine literals (numbers, quoted strings, true/false/null), paths rooted
at `context` or `input`, the arithmetic operators and parentheses; `+`
concatenates when either operand is a string.

This is a deliberately restricted dialect: no function calls, no loops, no
access outside the two bindings. The engine hands the evaluator a deep copy
of the context, so a failing script can never leave partial mutations behind.
*/
package action
