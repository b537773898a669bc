// Package gemini implements the generation interfaces using Google's
// Gemini API. It owns prompt templating, response parsing, and the
// transient/permanent error split; the bounded retry loop itself lives in
// the retry package and the connectivity gate in netcheck.
package gemini
