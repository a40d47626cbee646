// Package sampler decides the visual attributes of every generated slide:
// balanced identical/differing pairs for the style dataset, and single
// fully-featured slides for the captioned dataset.
package sampler

import (
	"context"
	"math/rand/v2"
	"strconv"

	"github.com/bagtoad/slidegen/internal/slide"
)

// ContentSource supplies the text placed on slides. Implementations must
// always return usable text; they never fail.
type ContentSource interface {
	Title(ctx context.Context) string
	Bullet(ctx context.Context, title string) string
	TableHeaders(ctx context.Context, n int) []string
	TableCell(ctx context.Context, header string, row, col int) string
}

// Pair is one labelled sample of the style dataset.
type Pair struct {
	ID     int
	First  slide.AttributeSet
	Second slide.AttributeSet
	// StyleLabel is 1 for an identical draw and 0 for a differing draw.
	StyleLabel int
	// FontLabel is 1 when both slides resolve to the same font path.
	FontLabel int
	// Differences lists the style dimensions that actually differ.
	Differences []string
}

// Sampler draws attribute sets from a fixed set of pools.
type Sampler struct {
	pools           Pools
	rng             *rand.Rand
	src             ContentSource
	forceDifference bool
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithForceDifference makes every differing draw differ in at least one
// style dimension. Without it a differing draw may coincide with its partner.
func WithForceDifference() Option {
	return func(s *Sampler) { s.forceDifference = true }
}

// New validates pools and returns a Sampler.
func New(pools Pools, rng *rand.Rand, src ContentSource, opts ...Option) (*Sampler, error) {
	if err := pools.Validate(); err != nil {
		return nil, err
	}
	s := &Sampler{pools: pools, rng: rng, src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// style holds the per-slide dimensions that define a slide's look.
type style struct {
	font             string
	fontSize         int
	titleFontSize    int
	background       string
	textColor        string
	borderWidth      int
	hasLogo          bool
	logoPath         string
	logoPosition     slide.LogoPosition
	bullet           bool
	table            bool
	tableBorderWidth int
	tableBorderColor string
}

// shared holds what both slides of a pair always have in common.
type shared struct {
	title       string
	body        [2]string
	lineSpacing int
	border      bool
	images      [2]string
	headers     []string
	rows        [][]string
}

// BalancedPairs returns exactly n pairs: n/2 identical (label 1) and n-n/2
// differing (label 0). Draws that would overfill a label are discarded.
func (s *Sampler) BalancedPairs(ctx context.Context, n int) ([]Pair, error) {
	targets := [2]int{n - n/2, n / 2}
	var counts [2]int
	pairs := make([]Pair, 0, n)

	for len(pairs) < n {
		if err := ctx.Err(); err != nil {
			return pairs, err
		}
		identical := s.rng.Float64() < 0.5
		label := 0
		if identical {
			label = 1
		}
		if counts[label] >= targets[label] {
			continue
		}
		p := s.Draw(ctx, identical)
		p.ID = len(pairs)
		pairs = append(pairs, p)
		counts[label]++
	}
	return pairs, nil
}

// Draw samples one pair under the identical or differing policy.
func (s *Sampler) Draw(ctx context.Context, identical bool) Pair {
	var s1, s2 style
	label := 0
	if identical {
		s1 = s.drawStyle()
		s2 = s1
		label = 1
	} else {
		s1 = s.drawStyle()
		s2 = s.vary(s1)
	}

	sh := s.drawShared(ctx, s1.table || s2.table)
	first := s.build(s1, sh)
	second := s.build(s2, sh)
	diffs := slide.Differences(first, second)

	if !identical && s.forceDifference {
		for tries := 0; len(diffs) == 0 && tries < 64; tries++ {
			s2 = s.force(s2)
			if s2.table && sh.headers == nil {
				sh = s.withTable(ctx, sh)
				first = s.build(s1, sh)
			}
			second = s.build(s2, sh)
			diffs = slide.Differences(first, second)
		}
	}

	fontLabel := 0
	if first.Font == second.Font {
		fontLabel = 1
	}
	return Pair{
		First:       first,
		Second:      second,
		StyleLabel:  label,
		FontLabel:   fontLabel,
		Differences: diffs,
	}
}

func (s *Sampler) drawStyle() style {
	p := s.pools
	st := style{
		font:             pick(s.rng, p.Fonts),
		fontSize:         pick(s.rng, p.FontSizes),
		titleFontSize:    pick(s.rng, p.TitleFontSizes),
		background:       pick(s.rng, p.Backgrounds),
		textColor:        pick(s.rng, p.TextColors),
		borderWidth:      pick(s.rng, p.BorderWidths),
		hasLogo:          len(p.Logos) > 0 && s.coin(),
		logoPosition:     pick(s.rng, p.LogoPositions),
		bullet:           s.coin(),
		table:            p.IncludeTables && s.coin(),
		tableBorderWidth: pick(s.rng, p.TableBorderWidths),
		tableBorderColor: pick(s.rng, p.TableBorderColors),
	}
	if st.hasLogo {
		st.logoPath = pick(s.rng, p.Logos)
	}
	return st
}

// vary derives the second slide of a differing draw: every dimension keeps
// the first slide's value with probability 0.5 and is resampled otherwise.
func (s *Sampler) vary(a style) style {
	p := s.pools
	b := style{
		font:             keepOr(s, a.font, p.Fonts),
		fontSize:         keepOr(s, a.fontSize, p.FontSizes),
		titleFontSize:    keepOr(s, a.titleFontSize, p.TitleFontSizes),
		background:       keepOr(s, a.background, p.Backgrounds),
		textColor:        keepOr(s, a.textColor, p.TextColors),
		borderWidth:      keepOr(s, a.borderWidth, p.BorderWidths),
		logoPosition:     keepOr(s, a.logoPosition, p.LogoPositions),
		tableBorderWidth: keepOr(s, a.tableBorderWidth, p.TableBorderWidths),
		tableBorderColor: keepOr(s, a.tableBorderColor, p.TableBorderColors),
	}
	b.hasLogo = a.hasLogo
	if !s.coin() {
		b.hasLogo = len(p.Logos) > 0 && s.coin()
	}
	if b.hasLogo {
		if a.hasLogo && s.coin() {
			b.logoPath = a.logoPath
		} else {
			b.logoPath = pick(s.rng, p.Logos)
		}
	}
	b.bullet = a.bullet
	if !s.coin() {
		b.bullet = s.coin()
	}
	b.table = a.table
	if !s.coin() {
		b.table = p.IncludeTables && s.coin()
	}
	return b
}

// force changes one randomly chosen dimension that has an alternative value.
func (s *Sampler) force(b style) style {
	p := s.pools
	var options []func()
	if len(p.Fonts) > 1 {
		options = append(options, func() { b.font = pickOther(s.rng, p.Fonts, b.font) })
	}
	if len(p.FontSizes) > 1 {
		options = append(options, func() { b.fontSize = pickOther(s.rng, p.FontSizes, b.fontSize) })
	}
	if len(p.TitleFontSizes) > 1 {
		options = append(options, func() { b.titleFontSize = pickOther(s.rng, p.TitleFontSizes, b.titleFontSize) })
	}
	if len(p.Backgrounds) > 1 {
		options = append(options, func() { b.background = pickOther(s.rng, p.Backgrounds, b.background) })
	}
	if len(p.TextColors) > 1 {
		options = append(options, func() { b.textColor = pickOther(s.rng, p.TextColors, b.textColor) })
	}
	if len(p.BorderWidths) > 1 {
		options = append(options, func() { b.borderWidth = pickOther(s.rng, p.BorderWidths, b.borderWidth) })
	}
	if len(p.Logos) > 0 {
		options = append(options, func() {
			b.hasLogo = !b.hasLogo
			if b.hasLogo {
				b.logoPath = pick(s.rng, p.Logos)
			} else {
				b.logoPath = ""
			}
		})
	}
	options = append(options, func() { b.bullet = !b.bullet })
	if p.IncludeTables {
		options = append(options, func() { b.table = !b.table })
	}
	options[s.rng.IntN(len(options))]()
	return b
}

func (s *Sampler) drawShared(ctx context.Context, needTable bool) shared {
	p := s.pools
	sh := shared{
		lineSpacing: pick(s.rng, p.LineSpacings),
		border:      s.coin(),
	}
	lines := between(s.rng, p.TextLines.Min, p.TextLines.Max)
	sh.title = s.src.Title(ctx)
	for i := 0; i < lines-1; i++ {
		sh.body[i] = s.src.Bullet(ctx, sh.title)
	}
	for i := range sh.images {
		if len(p.Images) > 0 && s.rng.Float64() < p.ImageChance {
			sh.images[i] = pick(s.rng, p.Images)
		}
	}
	if needTable && p.IncludeTables {
		sh = s.withTable(ctx, sh)
	}
	return sh
}

// withTable draws the grid dimensions once and fills headers and cells from
// the content source; both slides of a pair reuse the same grid.
func (s *Sampler) withTable(ctx context.Context, sh shared) shared {
	p := s.pools
	rows := between(s.rng, p.TableRows.Min, p.TableRows.Max)
	cols := between(s.rng, p.TableCols.Min, p.TableCols.Max)
	sh.headers = fitHeaders(s.src.TableHeaders(ctx, cols), cols)
	sh.rows = make([][]string, rows)
	for r := range sh.rows {
		sh.rows[r] = make([]string, cols)
		for c, h := range sh.headers {
			sh.rows[r][c] = s.src.TableCell(ctx, h, r+1, c+1)
		}
	}
	return sh
}

func (s *Sampler) build(st style, sh shared) slide.AttributeSet {
	a := slide.AttributeSet{
		Font:          st.font,
		FontSize:      st.fontSize,
		TitleFontSize: st.titleFontSize,
		LineSpacing:   sh.lineSpacing,
		Background:    st.background,
		TextColor:     st.textColor,
		Border:        sh.border,
		BorderWidth:   st.borderWidth,
		BorderColor:   s.pools.BorderColor,
		Title:         sh.title,
		Body:          sh.body,
		Bullet:        st.bullet,
		Images:        sh.images,
	}
	if st.hasLogo {
		a.Logo = &slide.Logo{Path: st.logoPath, Position: st.logoPosition}
	}
	if st.table && sh.headers != nil {
		a.Table = &slide.Table{
			Headers:     sh.headers,
			Rows:        sh.rows,
			BorderWidth: st.tableBorderWidth,
			BorderColor: st.tableBorderColor,
		}
	}
	return a
}

// Complex samples a single slide with every element enabled: border, logo,
// title with two bullets, a table and up to two distinct inline images.
func (s *Sampler) Complex(ctx context.Context) slide.AttributeSet {
	p := s.pools
	st := s.drawStyle()
	sh := shared{
		lineSpacing: pick(s.rng, p.LineSpacings),
		border:      true,
	}
	sh.title = s.src.Title(ctx)
	sh.body[0] = s.src.Bullet(ctx, sh.title)
	sh.body[1] = s.src.Bullet(ctx, sh.title)

	switch {
	case len(p.Images) >= 2:
		i := s.rng.IntN(len(p.Images))
		j := s.rng.IntN(len(p.Images) - 1)
		if j >= i {
			j++
		}
		sh.images = [2]string{p.Images[i], p.Images[j]}
	case len(p.Images) == 1:
		sh.images[0] = p.Images[0]
	}

	st.bullet = true
	st.hasLogo = len(p.Logos) > 0
	if st.hasLogo && st.logoPath == "" {
		st.logoPath = pick(s.rng, p.Logos)
	}
	st.table = true
	sh = s.withTable(ctx, sh)
	return s.build(st, sh)
}

func (s *Sampler) coin() bool {
	return s.rng.IntN(2) == 0
}

func pick[T any](rng *rand.Rand, pool []T) T {
	return pool[rng.IntN(len(pool))]
}

// pickOther returns a pool value different from cur. The pool must contain
// at least one such value.
func pickOther[T comparable](rng *rand.Rand, pool []T, cur T) T {
	var others []T
	for _, v := range pool {
		if v != cur {
			others = append(others, v)
		}
	}
	if len(others) == 0 {
		return cur
	}
	return others[rng.IntN(len(others))]
}

func keepOr[T any](s *Sampler, cur T, pool []T) T {
	if s.coin() {
		return cur
	}
	return pick(s.rng, pool)
}

func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// fitHeaders trims or pads headers to exactly n entries.
func fitHeaders(headers []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(headers) {
			out[i] = headers[i]
		} else {
			out[i] = "Column " + strconv.Itoa(i+1)
		}
	}
	return out
}
