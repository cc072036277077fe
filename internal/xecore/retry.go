// SPDX-License-Identifier: MPL-2.0

package xecore

import "github.com/xec-sh/xec/internal/retryx"

// RetryPolicy is an alias for retryx.Policy so both the dispatch loop
// (internal/retryx) and the public Request/Builder surface share one type
// without internal/retryx importing xecore (which would otherwise be a
// cycle, since retryx has no business knowing about Request/Result).
type RetryPolicy = retryx.Policy
