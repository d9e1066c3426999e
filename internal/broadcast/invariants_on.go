//go:build !nocheck

package broadcast

const checkInvariants = true
