package robustboost

import "testing"

func TestPositionEncodeDecodeRoundTrip(t *testing.T) {
	for _, nid := range []int{0, 1, 42} {
		for _, excluded := range []bool{false, true} {
			pos := Encode(nid, excluded)
			gotNode, gotExcluded := Node(pos), Excluded(pos)
			if gotNode != nid || gotExcluded != excluded {
				t.Errorf("Encode(%d,%v) round-trip failed: got node=%d excluded=%v", nid, excluded, gotNode, gotExcluded)
			}
		}
	}
}

func TestPositionMapExcludePreservesNode(t *testing.T) {
	p := NewPositionMap(3)
	p.SetNode(0, 7)
	p.Exclude(0)

	nid, excluded := p.At(0)
	if nid != 7 || !excluded {
		t.Errorf("expected node 7 excluded, got node=%d excluded=%v", nid, excluded)
	}

	p.SetNode(0, 9)
	nid, excluded = p.At(0)
	if nid != 9 || !excluded {
		t.Errorf("expected SetNode to preserve excluded flag, got node=%d excluded=%v", nid, excluded)
	}
}

func TestPositionRootZeroIsNotExcludedByDefault(t *testing.T) {
	p := NewPositionMap(1)
	nid, excluded := p.At(0)
	if nid != 0 || excluded {
		t.Errorf("expected a fresh position map to start at node 0, eligible, got node=%d excluded=%v", nid, excluded)
	}
}
