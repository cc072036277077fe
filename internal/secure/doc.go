// SPDX-License-Identifier: MPL-2.0

// Package secure implements password validation/generation/masking and the
// secure-askpass sudo helper-script lifecycle used by the SSH adapter's
// privilege-escalation strategies.
package secure
