// SPDX-License-Identifier: MPL-2.0

// Package xecore holds the data model, error taxonomy, and adapter contract
// shared by every execution backend. It has no dependency on any concrete
// adapter so that both the adapter packages and the public xec package can
// import it without creating a cycle.
package xecore
