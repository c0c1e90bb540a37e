package main

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestMessageLimit(t *testing.T) {
	req := require.New(t)

	// Unset, oversized and nonsensical values all fall back to the cap
	req.Equal(100, *messageLimit(nil))
	req.Equal(100, *messageLimit(lo.ToPtr(5000)))
	req.Equal(100, *messageLimit(lo.ToPtr(0)))
	req.Equal(100, *messageLimit(lo.ToPtr(-3)))

	// Lowering the limit is allowed
	req.Equal(25, *messageLimit(lo.ToPtr(25)))
}
