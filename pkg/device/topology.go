package device

import (
	"slices"
)

// Topology is the immutable coupling graph of a physical device.
//
// Adjacency lists are kept in ascending qubit order and all-pairs distances
// are precomputed at construction, so [Topology.Distance] is O(1) and
// [Topology.ShortestPath] is deterministic for a fixed link set: ties are
// always broken toward the lowest-numbered neighbor.
//
// The zero value is not usable; use [NewTopology]. A Topology is safe for
// concurrent readers.
type Topology struct {
	n     int
	links []Link
	adj   [][]Qubit
	dist  [][]int
}

// NewTopology builds a topology over numQubits physical qubits connected by
// the given links. Links may be supplied in any order and orientation; they
// are canonicalized internally.
//
// Construction fails with [ErrQubitRange], [ErrSelfLink], [ErrDuplicateLink],
// or [ErrDisconnected] when the description is malformed. A connected graph
// is a hard requirement: routing assumes every pair of qubits has a path.
func NewTopology(numQubits int, links []Link) (*Topology, error) {
	if numQubits <= 0 {
		return nil, ErrQubitRange
	}

	t := &Topology{
		n:     numQubits,
		links: make([]Link, 0, len(links)),
		adj:   make([][]Qubit, numQubits),
	}

	seen := make(map[Link]bool, len(links))
	for _, l := range links {
		l = NewLink(l.A, l.B)
		if l.A < 0 || int(l.B) >= numQubits {
			return nil, ErrQubitRange
		}
		if l.A == l.B {
			return nil, ErrSelfLink
		}
		if seen[l] {
			return nil, ErrDuplicateLink
		}
		seen[l] = true
		t.links = append(t.links, l)
		t.adj[l.A] = append(t.adj[l.A], l.B)
		t.adj[l.B] = append(t.adj[l.B], l.A)
	}

	slices.SortFunc(t.links, compareLinks)
	for q := range t.adj {
		slices.Sort(t.adj[q])
	}

	t.dist = make([][]int, numQubits)
	for q := 0; q < numQubits; q++ {
		t.dist[q] = t.bfsDistances(Qubit(q))
	}
	for _, d := range t.dist[0] {
		if d < 0 {
			return nil, ErrDisconnected
		}
	}

	return t, nil
}

func compareLinks(a, b Link) int {
	if a.A != b.A {
		return int(a.A - b.A)
	}
	return int(a.B - b.B)
}

// NumQubits returns the number of physical qubits on the device.
func (t *Topology) NumQubits() int { return t.n }

// Links returns the de-duplicated undirected link set in canonical order.
// The returned slice is a copy and may be modified by the caller.
func (t *Topology) Links() []Link {
	return slices.Clone(t.links)
}

// HasLink reports whether the unordered pair (a, b) is a direct coupling.
func (t *Topology) HasLink(a, b Qubit) bool {
	if !t.valid(a) || !t.valid(b) {
		return false
	}
	_, ok := slices.BinarySearch(t.adj[a], b)
	return ok
}

// Neighbors returns the qubits directly coupled to q, in ascending order.
// The returned slice must not be modified.
func (t *Topology) Neighbors(q Qubit) []Qubit {
	if !t.valid(q) {
		return nil
	}
	return t.adj[q]
}

// Distance returns the number of links on a shortest path between p and q.
// Distance is O(1): all pairwise distances are precomputed at construction.
func (t *Topology) Distance(p, q Qubit) (int, error) {
	if !t.valid(p) || !t.valid(q) {
		return 0, ErrQubitRange
	}
	return t.dist[p][q], nil
}

// ShortestPath returns one shortest qubit sequence from p to q, inclusive of
// both endpoints. Ties are broken deterministically toward lower qubit ids.
// A path from a qubit to itself is the single-element sequence [p].
func (t *Topology) ShortestPath(p, q Qubit) ([]Qubit, error) {
	if !t.valid(p) || !t.valid(q) {
		return nil, ErrQubitRange
	}
	return bfsPath(t.adj, p, q, -1)
}

// Within returns every qubit reachable from q in at most depth hops,
// including q itself, in ascending order. A negative depth yields nil.
func (t *Topology) Within(q Qubit, depth int) []Qubit {
	if !t.valid(q) || depth < 0 {
		return nil
	}
	var out []Qubit
	for other, d := range t.dist[q] {
		if d >= 0 && d <= depth {
			out = append(out, Qubit(other))
		}
	}
	return out
}

// Mask returns a view of the topology with one qubit (and its incident
// links) removed from path searches. The view shares the topology's storage;
// building one allocates nothing beyond the view header.
//
// Masked views exist for pair routing: when two qubits move toward a target
// link, each one's swap chain must not pass through the slot the partner is
// about to vacate.
func (t *Topology) Mask(excluded Qubit) *View {
	return &View{t: t, excluded: excluded}
}

// View is a topology with a single qubit masked out. See [Topology.Mask].
type View struct {
	t        *Topology
	excluded Qubit
}

// ShortestPath is like [Topology.ShortestPath] but treats the masked qubit
// and its incident links as absent. Returns [ErrUnreachable] when masking
// disconnects the endpoints, and [ErrQubitRange] when either endpoint is the
// masked qubit itself.
func (v *View) ShortestPath(p, q Qubit) ([]Qubit, error) {
	if !v.t.valid(p) || !v.t.valid(q) || p == v.excluded || q == v.excluded {
		return nil, ErrQubitRange
	}
	return bfsPath(v.t.adj, p, q, v.excluded)
}

func (t *Topology) valid(q Qubit) bool { return q >= 0 && int(q) < t.n }

// bfsDistances returns hop counts from src to every qubit, -1 if unreachable.
func (t *Topology) bfsDistances(src Qubit) []int {
	dist := make([]int, t.n)
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []Qubit{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range t.adj[cur] {
			if dist[nb] < 0 {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

// bfsPath runs a breadth-first search over adj from p to q, skipping the
// excluded qubit (pass a negative value to disable masking). Neighbors are
// stored in ascending order, so the first parent recorded for a node is the
// lowest-id predecessor and the returned path is deterministic.
func bfsPath(adj [][]Qubit, p, q, excluded Qubit) ([]Qubit, error) {
	if p == q {
		return []Qubit{p}, nil
	}
	parent := make([]Qubit, len(adj))
	for i := range parent {
		parent[i] = -1
	}
	parent[p] = p
	queue := []Qubit{p}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adj[cur] {
			if nb == excluded || parent[nb] >= 0 {
				continue
			}
			parent[nb] = cur
			if nb == q {
				return walkBack(parent, p, q), nil
			}
			queue = append(queue, nb)
		}
	}
	return nil, ErrUnreachable
}

func walkBack(parent []Qubit, p, q Qubit) []Qubit {
	var rev []Qubit
	for cur := q; ; cur = parent[cur] {
		rev = append(rev, cur)
		if cur == p {
			break
		}
	}
	slices.Reverse(rev)
	return rev
}
