package mechanics

import (
	"reflect"
	"testing"
)

func TestUnionFindGroups(t *testing.T) {
	uf := newUnionFind(6)
	uf.union(0, 1)
	uf.union(2, 3)
	uf.union(1, 3) // bridges the two sets

	groups := uf.groups()
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3 ({0,1,2,3}, {4}, {5})", len(groups))
	}
	if got := groups[uf.find(0)]; !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("merged group = %v, want [0 1 2 3]", got)
	}
	if uf.find(4) == uf.find(5) {
		t.Error("4 and 5 were never unioned")
	}
}

func TestUnionFindOrderIndependent(t *testing.T) {
	pairs := [][2]int{{0, 1}, {1, 2}, {3, 4}, {2, 3}}

	forward := newUnionFind(5)
	for _, p := range pairs {
		forward.union(p[0], p[1])
	}
	backward := newUnionFind(5)
	for i := len(pairs) - 1; i >= 0; i-- {
		backward.union(pairs[i][1], pairs[i][0])
	}

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			a := forward.find(i) == forward.find(j)
			b := backward.find(i) == backward.find(j)
			if a != b {
				t.Fatalf("connectivity of (%d,%d) depends on union order", i, j)
			}
		}
	}
}

func TestUnionFindSelfUnion(t *testing.T) {
	uf := newUnionFind(2)
	uf.union(0, 0)
	uf.union(1, 1)
	if uf.find(0) == uf.find(1) {
		t.Error("self-unions must not merge distinct sets")
	}
}
