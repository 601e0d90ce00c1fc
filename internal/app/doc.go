// Package app wires the whole run together: logger, policy, tokenizer,
// discovery, the executor pool, and the final report.
package app
