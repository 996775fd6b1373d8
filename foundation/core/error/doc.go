// Package error provides the structured error type used throughout kylang.
//
// Package: error
// Title: kylang Error Handling
// Description: Structured errors carrying a classification code, a severity,
//              the failing operation and free-form details such as source
//              positions. Language failures (lexical, syntax, arithmetic,
//              input format) and infrastructure failures share this type so
//              that every caller can branch on codes instead of strings.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Reduced to the kylang code set, added language codes
//
// Usage:
//
//	err := mdwerror.New("Invalid lexeme \"$\" at line 3, column 4").
//		WithCode(mdwerror.CodeLexical).
//		WithDetail("row", 3).
//		WithDetail("column", 4)
//
//	if mdwerror.HasCode(err, mdwerror.CodeLexical) {
//		// report position
//	}
package error
