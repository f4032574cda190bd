package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunDemo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDemo(&buf))

	require.Equal(t, `inserted 10 5 10 7: 5 7 10 10
count(10) = 2, size = 4
lower_bound(8) = 10
select(0) = 5
select(1) = 7
select(2) = 10
select(3) = 10
rank_of(6) = 1
rank_of(10) = 2
rank_of(11) = 4
erase(10): count(10) = 1, 5 7 10
`, buf.String())
}
