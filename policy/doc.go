// Package policy provides optional declarative rules applied when approval
// requests are registered – for example to auto-approve trusted agents or to
// reject known-bad ones without waiting for a human.
package policy
