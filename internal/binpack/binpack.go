// Package binpack implements a maxrects rectangle packer used for glyph
// atlas allocation. Rectangles are placed with the best-area-fit heuristic
// and are never rotated.
package binpack

// Rect is a placed or free region inside the bin.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) containedIn(o Rect) bool {
	return r.X >= o.X && r.Y >= o.Y &&
		r.X+r.W <= o.X+o.W && r.Y+r.H <= o.Y+o.H
}

// Packer packs rectangles into a fixed-size bin. It maintains the set of
// maximal free rectangles; every insertion splits the free rectangles it
// overlaps and prunes regions contained in others.
//
// A Packer is not safe for concurrent use.
type Packer struct {
	width  int
	height int
	used   []Rect
	free   []Rect

	// newFree collects the free rectangles produced by the current
	// insertion so they can be pruned against the old list in one pass.
	newFree []Rect
}

// New returns a packer for a bin of the given size.
func New(width, height int) *Packer {
	p := &Packer{}
	p.Reset(width, height)
	return p
}

// Reset discards all placed rectangles and resizes the bin.
func (p *Packer) Reset(width, height int) {
	p.width = width
	p.height = height
	p.used = p.used[:0]
	p.free = append(p.free[:0], Rect{0, 0, width, height})
	p.newFree = p.newFree[:0]
}

// Width returns the bin width.
func (p *Packer) Width() int { return p.width }

// Height returns the bin height.
func (p *Packer) Height() int { return p.height }

// Insert places a w x h rectangle into the bin. It reports false when no
// free region can hold the rectangle; the bin is left unchanged in that
// case.
func (p *Packer) Insert(w, h int) (Rect, bool) {
	if w <= 0 || h <= 0 {
		return Rect{}, false
	}
	node, ok := p.findPosition(w, h)
	if !ok {
		return Rect{}, false
	}
	p.placeRect(node)
	return node, true
}

// Occupancy returns the fraction of the bin surface covered by placed
// rectangles.
func (p *Packer) Occupancy() float64 {
	if p.width == 0 || p.height == 0 {
		return 0
	}
	var usedArea uint64
	for _, r := range p.used {
		usedArea += uint64(r.W) * uint64(r.H)
	}
	return float64(usedArea) / (float64(p.width) * float64(p.height))
}

// findPosition chooses the free rectangle minimizing leftover area, with
// the shorter leftover side breaking ties. The rectangle is placed at the
// top-left corner of the chosen region.
func (p *Packer) findPosition(w, h int) (Rect, bool) {
	bestAreaFit := int(^uint(0) >> 1)
	bestShortSideFit := int(^uint(0) >> 1)
	var best Rect
	found := false

	for _, fr := range p.free {
		if fr.W < w || fr.H < h {
			continue
		}
		areaFit := fr.W*fr.H - w*h
		leftoverHoriz := fr.W - w
		leftoverVert := fr.H - h
		shortSideFit := min(leftoverHoriz, leftoverVert)

		if areaFit < bestAreaFit || (areaFit == bestAreaFit && shortSideFit < bestShortSideFit) {
			best = Rect{X: fr.X, Y: fr.Y, W: w, H: h}
			bestAreaFit = areaFit
			bestShortSideFit = shortSideFit
			found = true
		}
	}
	return best, found
}

func (p *Packer) placeRect(node Rect) {
	for i := 0; i < len(p.free); {
		if p.splitFreeNode(p.free[i], node) {
			// Swap-remove: the split replaced this free rectangle.
			p.free[i] = p.free[len(p.free)-1]
			p.free = p.free[:len(p.free)-1]
		} else {
			i++
		}
	}
	p.pruneFreeList()
	p.used = append(p.used, node)
}

// splitFreeNode splits free against used and reports whether they overlap.
// Each overlapping edge contributes one residual free rectangle, so a
// single free rectangle yields up to four.
func (p *Packer) splitFreeNode(free, used Rect) bool {
	if used.X >= free.X+free.W || used.X+used.W <= free.X ||
		used.Y >= free.Y+free.H || used.Y+used.H <= free.Y {
		return false
	}

	if used.X < free.X+free.W && used.X+used.W > free.X {
		// Strip above the used rectangle.
		if used.Y > free.Y && used.Y < free.Y+free.H {
			n := free
			n.H = used.Y - free.Y
			p.insertNewFreeRect(n)
		}
		// Strip below.
		if used.Y+used.H < free.Y+free.H {
			n := free
			n.Y = used.Y + used.H
			n.H = free.Y + free.H - (used.Y + used.H)
			p.insertNewFreeRect(n)
		}
	}

	if used.Y < free.Y+free.H && used.Y+used.H > free.Y {
		// Strip to the left.
		if used.X > free.X && used.X < free.X+free.W {
			n := free
			n.W = used.X - free.X
			p.insertNewFreeRect(n)
		}
		// Strip to the right.
		if used.X+used.W < free.X+free.W {
			n := free
			n.X = used.X + used.W
			n.W = free.X + free.W - (used.X + used.W)
			p.insertNewFreeRect(n)
		}
	}

	return true
}

func (p *Packer) insertNewFreeRect(r Rect) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	for i := 0; i < len(p.newFree); {
		if r.containedIn(p.newFree[i]) {
			return
		}
		if p.newFree[i].containedIn(r) {
			p.newFree[i] = p.newFree[len(p.newFree)-1]
			p.newFree = p.newFree[:len(p.newFree)-1]
		} else {
			i++
		}
	}
	p.newFree = append(p.newFree, r)
}

// pruneFreeList drops new free rectangles contained in surviving old ones,
// then merges the remainder into the free list.
func (p *Packer) pruneFreeList() {
	for _, fr := range p.free {
		for j := 0; j < len(p.newFree); {
			if p.newFree[j].containedIn(fr) {
				p.newFree[j] = p.newFree[len(p.newFree)-1]
				p.newFree = p.newFree[:len(p.newFree)-1]
			} else {
				j++
			}
		}
	}
	p.free = append(p.free, p.newFree...)
	p.newFree = p.newFree[:0]
}
