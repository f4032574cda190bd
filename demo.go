package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pliu/rankset/pkg/multiset"
)

// runDemo walks a small multiset through insert, lower bound, select, rank
// and erase, printing what each step returns.
func runDemo(w io.Writer) error {
	ms := multiset.New[int]()
	for _, k := range []int{10, 5, 10, 7} {
		if err := ms.Insert(k); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "inserted 10 5 10 7: %s\n", inorder(ms))
	fmt.Fprintf(w, "count(10) = %d, size = %d\n", ms.Count(10), ms.Len())

	if e, ok := ms.LowerBound(8); ok {
		fmt.Fprintf(w, "lower_bound(8) = %d\n", e.Key())
	}
	for k := range ms.Len() {
		e, _ := ms.Select(k)
		fmt.Fprintf(w, "select(%d) = %d\n", k, e.Key())
	}
	for _, k := range []int{6, 10, 11} {
		fmt.Fprintf(w, "rank_of(%d) = %d\n", k, ms.RankOf(k))
	}

	ms.Erase(10)
	fmt.Fprintf(w, "erase(10): count(10) = %d, %s\n", ms.Count(10), inorder(ms))
	return nil
}

func inorder(ms *multiset.Multiset[int]) string {
	var sb strings.Builder
	for k := range ms.All() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, k)
	}
	return sb.String()
}
