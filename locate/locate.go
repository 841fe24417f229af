// Package locate finds the three finder rings and one alignment ring in a
// binarized image, per spec.md §4.8. The run-length state machine and
// cross-check verification generalize the teacher's QR finder-pattern
// scanner (qrcode/detector/detector.go) from its fixed 1:1:3:1:1 window to
// an arbitrary odd-length ratio, so the same machinery also drives the
// 1:3:1 alignment search.
package locate

import (
	"errors"
	"math"

	"github.com/ichingcode/iching/bitutil"
)

// FinderRatio is the run-length ratio of a finder ring: black, white,
// black (wide), white, black.
var FinderRatio = []int{1, 1, 3, 1, 1}

// AlignmentRatio is the run-length ratio of the alignment ring: black
// (narrow ring), white (wide center), black (narrow ring).
var AlignmentRatio = []int{1, 3, 1}

// MinPatternDist is the minimum pixel distance between two finder
// candidates for them to be considered distinct.
const MinPatternDist = 50

// ErrNotFound is returned when three finder patterns cannot be located.
var ErrNotFound = errors.New("could not locate three finder patterns")

// Pattern is a located candidate: centre, estimated module size, and the
// running confirmation count/error accumulated while scanning.
type Pattern struct {
	X, Y       float64
	ModuleSize float64
	Count      int
	Error      float64
}

func (p *Pattern) aboutEquals(moduleSize, x, y float64) bool {
	if math.Abs(y-p.Y) <= moduleSize && math.Abs(x-p.X) <= moduleSize {
		diff := math.Abs(moduleSize - p.ModuleSize)
		return diff <= 1.0 || diff <= p.ModuleSize
	}
	return false
}

func (p *Pattern) combine(x, y, moduleSize float64) *Pattern {
	n := p.Count + 1
	return &Pattern{
		X:          (float64(p.Count)*p.X + x) / float64(n),
		Y:          (float64(p.Count)*p.Y + y) / float64(n),
		ModuleSize: (float64(p.Count)*p.ModuleSize + moduleSize) / float64(n),
		Count:      n,
	}
}

// Patterns is the located geometry of a code: three finder centres plus
// the alignment centre, oriented so that topLeft->topRight->bottomRight
// traverses the quadrilateral clockwise.
type Patterns struct {
	TopLeft, TopRight, BottomLeft, BottomRight *Pattern
	FinderAverageSize                          float64
	AlignmentSize                              float64
}

// Locate scans image for three finder patterns and the alignment pattern,
// skipping every other row as the teacher's detector does.
func Locate(image *bitutil.BitMatrix) (*Patterns, error) {
	skip := 2
	candidates := scanHorizontal(image, FinderRatio, skip)
	best := selectThree(image, candidates)
	if best == nil {
		return nil, ErrNotFound
	}

	topLeft, topRight, bottomLeft := orient(best)
	finderAverageSize := (topLeft.ModuleSize + topRight.ModuleSize + bottomLeft.ModuleSize) / 3

	estX := topRight.X - topLeft.X + bottomLeft.X
	estY := topRight.Y - topLeft.Y + bottomLeft.Y
	expectedAlignmentSize := finderAverageSize * 5 / 7

	radius := int(math.Hypot(topRight.X-topLeft.X, topRight.Y-topLeft.Y) / 2)
	alignment := findAlignment(image, int(estX), int(estY), radius, expectedAlignmentSize)

	bottomRight := &Pattern{X: estX, Y: estY, ModuleSize: expectedAlignmentSize}
	alignmentSize := expectedAlignmentSize
	if alignment != nil {
		bottomRight = alignment
		alignmentSize = alignment.ModuleSize
	}

	return &Patterns{
		TopLeft:           topLeft,
		TopRight:          topRight,
		BottomLeft:        bottomLeft,
		BottomRight:       bottomRight,
		FinderAverageSize: finderAverageSize,
		AlignmentSize:     alignmentSize,
	}, nil
}

// scanHorizontal sweeps every skip-th row looking for ratio, generalizing
// the teacher's 5-state sweep to an arbitrary odd-length ratio via a
// trailing run-length window instead of in-place state recycling.
func scanHorizontal(image *bitutil.BitMatrix, ratio []int, skip int) []*Pattern {
	height := image.Height()
	width := image.Width()
	var candidates []*Pattern

	for y := skip - 1; y < height; y += skip {
		runs := scanRuns(width, func(x int) bool { return image.Get(x, y) })
		n := len(ratio)
		for end := n; end <= len(runs); end++ {
			window := runs[end-n : end]
			if !validWindow(window, ratio) {
				continue
			}
			total := 0
			for _, r := range window {
				total += r.length
			}
			mid := n / 2
			trailing := 0
			for i := mid + 1; i < n; i++ {
				trailing += window[i].length
			}
			centerX := float64(window[n-1].end()) - float64(trailing) - float64(window[mid].length)/2
			moduleSize := float64(total) / float64(sumRatio(ratio))
			centerY := crossCheckVertical(image, int(centerX), y, ratio, moduleSize)
			if math.IsNaN(centerY) {
				continue
			}
			candidates = addCandidate(candidates, centerX, centerY, moduleSize)
		}
	}
	return candidates
}

type run struct {
	length int
	black  bool
	stop   int // exclusive end x
}

func (r run) end() int { return r.stop }

// scanRuns walks a 1-D line and returns every maximal run of one colour.
func scanRuns(length int, get func(x int) bool) []run {
	var runs []run
	if length == 0 {
		return runs
	}
	cur := get(0)
	start := 0
	for x := 1; x < length; x++ {
		v := get(x)
		if v != cur {
			runs = append(runs, run{length: x - start, black: cur, stop: x})
			start = x
			cur = v
		}
	}
	runs = append(runs, run{length: length - start, black: cur, stop: length})
	return runs
}

func sumRatio(ratio []int) int {
	s := 0
	for _, r := range ratio {
		s += r
	}
	return s
}

// validWindow checks that window alternates colour starting black and
// that every run's length is within ratio[i]*unit/2 of its expectation.
func validWindow(window []run, ratio []int) bool {
	total := 0
	for i, w := range window {
		if w.black != (i%2 == 0) {
			return false
		}
		total += w.length
	}
	if total < sumRatio(ratio) {
		return false
	}
	unit := float64(total) / float64(sumRatio(ratio))
	for i, w := range window {
		expected := float64(ratio[i]) * unit
		tolerance := expected / 2
		if math.Abs(float64(w.length)-expected) >= tolerance {
			return false
		}
	}
	return true
}

// crossCheckVertical walks outward from (centerX, startY) counting runs
// against ratio the same way the teacher's crossCheckVerticalFinder does,
// using a single shared run count while scanning both directions through
// the middle run.
func crossCheckVertical(image *bitutil.BitMatrix, centerX, startY int, ratio []int, moduleSize float64) float64 {
	n := len(ratio)
	mid := n / 2
	counts := make([]int, n)
	maxCounts := make([]int, n)
	for i, r := range ratio {
		maxCounts[i] = int(float64(r)*moduleSize) + int(float64(r)*moduleSize/2) + 1
	}
	height := image.Height()

	// The middle run is black for the finder ratio and white for the
	// alignment ratio; every slot's colour follows from its index.
	y := startY
	for y >= 0 && image.Get(centerX, y) == (mid%2 == 0) && counts[mid] <= maxCounts[mid] {
		counts[mid]++
		y--
	}
	if y < 0 || counts[mid] > maxCounts[mid] {
		return math.NaN()
	}
	for s := mid - 1; s >= 0; s-- {
		want := s%2 == 0
		for y >= 0 && image.Get(centerX, y) == want && counts[s] <= maxCounts[s] {
			counts[s]++
			y--
		}
		if y < 0 || counts[s] > maxCounts[s] {
			return math.NaN()
		}
	}

	y = startY + 1
	for y < height && image.Get(centerX, y) == (mid%2 == 0) && counts[mid] <= maxCounts[mid] {
		counts[mid]++
		y++
	}
	if y == height || counts[mid] > maxCounts[mid] {
		return math.NaN()
	}
	for s := mid + 1; s < n; s++ {
		want := s%2 == 0
		for y < height && image.Get(centerX, y) == want && counts[s] <= maxCounts[s] {
			counts[s]++
			y++
		}
		if counts[s] > maxCounts[s] {
			return math.NaN()
		}
	}

	window := make([]run, n)
	for i, c := range counts {
		window[i] = run{length: c, black: i%2 == 0}
	}
	if !validWindow(window, ratio) {
		return math.NaN()
	}

	trailing := 0
	for i := mid + 1; i < n; i++ {
		trailing += counts[i]
	}
	return float64(y) - float64(trailing) - float64(counts[mid])/2
}

// scanDirection walks outward from (cx, cy) along the unit vector (dx, dy)
// in both directions, counting consecutive same-colour steps against ratio
// the same way crossCheckVertical does along a fixed vertical line. It
// returns the per-slot step counts, or nil if the ratio pattern does not
// hold or the walk runs off the image along this direction.
func scanDirection(image *bitutil.BitMatrix, cx, cy, dx, dy float64, ratio []int, moduleSize float64) []float64 {
	n := len(ratio)
	mid := n / 2
	counts := make([]float64, n)
	maxCounts := make([]float64, n)
	for i, r := range ratio {
		maxCounts[i] = float64(r)*moduleSize + float64(r)*moduleSize/2 + 1
	}

	sample := func(t float64) (bool, bool) {
		x := int(math.Round(cx + t*dx))
		y := int(math.Round(cy + t*dy))
		if x < 0 || x >= image.Width() || y < 0 || y >= image.Height() {
			return false, false
		}
		return image.Get(x, y), true
	}

	t := 0.0
	for {
		v, ok := sample(t)
		if !ok {
			return nil
		}
		if !v || counts[mid] >= maxCounts[mid] {
			break
		}
		counts[mid]++
		t--
	}
	if counts[mid] > maxCounts[mid] {
		return nil
	}
	for s := mid - 1; s >= 0; s-- {
		want := s%2 == 0
		for {
			v, ok := sample(t)
			if !ok {
				return nil
			}
			if v != want || counts[s] >= maxCounts[s] {
				break
			}
			counts[s]++
			t--
		}
		if counts[s] > maxCounts[s] {
			return nil
		}
	}

	t = 1.0
	for {
		v, ok := sample(t)
		if !ok {
			return nil
		}
		if !v || counts[mid] >= maxCounts[mid] {
			break
		}
		counts[mid]++
		t++
	}
	if counts[mid] > maxCounts[mid] {
		return nil
	}
	for s := mid + 1; s < n; s++ {
		want := s%2 == 0
		for {
			v, ok := sample(t)
			if !ok {
				return nil
			}
			if v != want || counts[s] >= maxCounts[s] {
				break
			}
			counts[s]++
			t++
		}
		if counts[s] > maxCounts[s] {
			return nil
		}
	}

	window := make([]run, n)
	for i, c := range counts {
		window[i] = run{length: int(c), black: i%2 == 0}
	}
	if !validWindow(window, ratio) {
		return nil
	}
	return counts
}

// measureSizeAndError samples the state array through a candidate's centre
// in four directions, vertical, horizontal, and both diagonals (weighted
// by sqrt(2), since a diagonal step covers sqrt(2) pixels), per spec.md
// §4.8 step 5. It returns the candidate's average size and the mean
// squared deviation over all direction/slot pairs, or ok=false if any
// direction fails to confirm ratio.
func measureSizeAndError(image *bitutil.BitMatrix, p *Pattern, ratio []int) (size, errVal float64, ok bool) {
	type direction struct {
		dx, dy, weight float64
	}
	directions := []direction{
		{1, 0, 1},
		{0, 1, 1},
		{1, 1, math.Sqrt2},
		{1, -1, math.Sqrt2},
	}

	counts := make([][]float64, len(directions))
	for i, d := range directions {
		c := scanDirection(image, p.X, p.Y, d.dx, d.dy, ratio, p.ModuleSize)
		if c == nil {
			return 0, 0, false
		}
		counts[i] = c
	}

	weightedSum := 0.0
	for i, d := range directions {
		total := 0.0
		for _, c := range counts[i] {
			total += c
		}
		weightedSum += total * d.weight
	}
	averageSize := weightedSum / float64(len(directions))
	averageUnit := averageSize / float64(sumRatio(ratio))

	sumSquares := 0.0
	for i, d := range directions {
		for j, c := range counts[i] {
			scaled := c * d.weight
			term := scaled/(averageUnit*float64(ratio[j])) - 1
			sumSquares += term * term
		}
	}
	factors := float64(len(directions) * len(ratio))
	return averageSize, sumSquares / factors, true
}

func addCandidate(candidates []*Pattern, x, y, moduleSize float64) []*Pattern {
	for i, c := range candidates {
		if c.aboutEquals(moduleSize, x, y) {
			candidates[i] = c.combine(x, y, moduleSize)
			return candidates
		}
	}
	return append(candidates, &Pattern{X: x, Y: y, ModuleSize: moduleSize, Count: 1})
}

// selectThree picks the three lowest-error, non-duplicate finder
// candidates, rejecting outliers whose size disagrees wildly with the
// rest (spec.md §4.8 finder assignment). Each candidate's size and error
// come from measureSizeAndError's four-direction sampling, not from how
// many times the horizontal sweep happened to confirm it.
func selectThree(image *bitutil.BitMatrix, candidates []*Pattern) []*Pattern {
	if len(candidates) < 3 {
		return nil
	}
	deduped := dedupe(candidates)
	if len(deduped) < 3 {
		return nil
	}

	var scored []*Pattern
	for _, c := range deduped {
		size, errVal, ok := measureSizeAndError(image, c, FinderRatio)
		if !ok {
			continue
		}
		c.ModuleSize = size
		c.Error = errVal
		scored = append(scored, c)
	}
	if len(scored) < 3 {
		return nil
	}
	sortByError(scored)
	top := scored[:3]

	estimatedSize := 0.0
	for _, c := range top {
		if c.ModuleSize > estimatedSize {
			estimatedSize = c.ModuleSize
		}
	}
	var filtered []*Pattern
	for _, c := range top {
		if c.ModuleSize >= 5*estimatedSize || 4*c.ModuleSize <= estimatedSize {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) < 3 {
		return nil
	}
	return filtered[:3]
}

func dedupe(candidates []*Pattern) []*Pattern {
	var out []*Pattern
	for _, c := range candidates {
		duplicate := false
		for _, o := range out {
			if math.Hypot(c.X-o.X, c.Y-o.Y) < MinPatternDist {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, c)
		}
	}
	return out
}

func sortByError(patterns []*Pattern) {
	for i := 1; i < len(patterns); i++ {
		for j := i; j > 0 && patterns[j].Error < patterns[j-1].Error; j-- {
			patterns[j], patterns[j-1] = patterns[j-1], patterns[j]
		}
	}
}

// orient picks the diagonal pair (the two farthest-apart points) as
// top-right/bottom-left and orients them so that topLeft, topRight,
// bottomLeft is clockwise.
func orient(patterns []*Pattern) (topLeft, topRight, bottomLeft *Pattern) {
	a, b, c := patterns[0], patterns[1], patterns[2]
	dab := dist(a, b)
	dbc := dist(b, c)
	dac := dist(a, c)

	var tl, p1, p2 *Pattern
	switch {
	case dbc >= dab && dbc >= dac:
		tl, p1, p2 = a, b, c
	case dac >= dab && dac >= dbc:
		tl, p1, p2 = b, a, c
	default:
		tl, p1, p2 = c, a, b
	}

	cross := (p1.X-tl.X)*(p2.Y-tl.Y) - (p1.Y-tl.Y)*(p2.X-tl.X)
	if cross < 0 {
		p1, p2 = p2, p1
	}
	return tl, p1, p2
}

func dist(a, b *Pattern) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// findAlignment searches a square window centred at (cx, cy) with the
// given radius for a 1:3:1 ring, keeping the lowest-error candidate whose
// size lands within [expected/4, 5*expected].
func findAlignment(image *bitutil.BitMatrix, cx, cy, radius int, expectedSize float64) *Pattern {
	left := cx - radius
	top := cy - radius
	right := cx + radius
	bottom := cy + radius
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	if right >= image.Width() {
		right = image.Width() - 1
	}
	if bottom >= image.Height() {
		bottom = image.Height() - 1
	}
	if right <= left || bottom <= top {
		return nil
	}

	var best *Pattern
	for y := top; y <= bottom; y++ {
		runs := scanRuns(right-left, func(x int) bool { return image.Get(left+x, y) })
		n := len(AlignmentRatio)
		for end := n; end <= len(runs); end++ {
			window := runs[end-n : end]
			if !validWindow(window, AlignmentRatio) {
				continue
			}
			total := 0
			for _, r := range window {
				total += r.length
			}
			centerX := float64(left + window[n-1].end())
			mid := n / 2
			trailing := 0
			for i := mid + 1; i < n; i++ {
				trailing += window[i].length
			}
			centerX -= float64(trailing) + float64(window[mid].length)/2
			moduleSize := float64(total) / float64(sumRatio(AlignmentRatio))
			size := float64(total)
			if size < expectedSize/4 || size > 5*expectedSize {
				continue
			}
			centerY := crossCheckVertical(image, int(centerX), y, AlignmentRatio, moduleSize)
			if math.IsNaN(centerY) {
				continue
			}
			errVal := math.Abs(size - expectedSize)
			if best == nil || errVal < best.Error {
				best = &Pattern{X: centerX, Y: centerY, ModuleSize: size, Error: errVal}
			}
		}
	}
	return best
}
