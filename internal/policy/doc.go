// Package policy loads the optional HCL policy file holding the filter and
// dedup tuning that has no sane command-line representation.
package policy
