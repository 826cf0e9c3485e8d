package interval

import "testing"

func chunkTags(t *testing.T, chunks []Chunk) []Tag {
	t.Helper()
	out := make([]Tag, len(chunks))
	for i, c := range chunks {
		out[i] = c.Tag
	}
	return out
}

func TestSplitDisjointListsTagEachSide(t *testing.T) {
	a := []*SI{New(0, 4, 1)}
	b := []*SI{New(10, 20, 1)}
	chunks := Split(a, b)
	if len(chunks) != 2 {
		t.Fatalf("Split of disjoint lists produced %d chunks, want 2", len(chunks))
	}
	if chunks[0].Tag != First || chunks[0].SI.Lo() != 0 || chunks[0].SI.Hi() != 4 {
		t.Fatalf("first chunk = %+v, want First [0,4)", chunks[0])
	}
	if chunks[1].Tag != Second || chunks[1].SI.Lo() != 10 || chunks[1].SI.Hi() != 20 {
		t.Fatalf("second chunk = %+v, want Second [10,20)", chunks[1])
	}
}

func TestSplitIdenticalIntervalsProduceOneBothChunk(t *testing.T) {
	a := []*SI{New(0, 8, 1)}
	b := []*SI{New(0, 8, 1)}
	chunks := Split(a, b)
	if len(chunks) != 1 || chunks[0].Tag != Both {
		t.Fatalf("Split of identical intervals = %+v, want one Both chunk", chunks)
	}
	if chunks[0].SI.Lo() != 0 || chunks[0].SI.Hi() != 8 {
		t.Fatalf("Both chunk bounds = %v, want [0,8)", chunks[0].SI)
	}
}

func TestSplitOneIntervalSpanningTwo(t *testing.T) {
	a := []*SI{New(0, 8, 1)}
	b := []*SI{New(0, 4, 1), New(4, 8, 1)}
	chunks := Split(a, b)
	covered := int64(0)
	for _, c := range chunks {
		if c.SI.Lo() != covered {
			t.Fatalf("chunk %+v does not continue coverage at %d", c, covered)
		}
		covered = c.SI.Hi()
	}
	if covered != 8 {
		t.Fatalf("chunks do not cover the full [0,8) range, covered up to %d", covered)
	}
	tags := chunkTags(t, chunks)
	for _, tag := range tags {
		if tag != Both {
			t.Fatalf("every chunk should be Both when a fully overlaps b's pieces, got %v", tags)
		}
	}
}

func TestSplitPartialOverlapProducesFirstBothSecond(t *testing.T) {
	a := []*SI{New(0, 10, 1)}
	b := []*SI{New(5, 15, 1)}
	chunks := Split(a, b)
	if len(chunks) == 0 {
		t.Fatalf("Split produced no chunks")
	}
	var sawFirst, sawBoth, sawSecond bool
	covered := int64(0)
	for _, c := range chunks {
		if c.SI.Lo() != covered {
			t.Fatalf("gap in coverage before %v (expected start %d)", c.SI, covered)
		}
		covered = c.SI.Hi()
		switch c.Tag {
		case First:
			sawFirst = true
		case Both:
			sawBoth = true
		case Second:
			sawSecond = true
		}
	}
	if !sawFirst || !sawBoth || !sawSecond {
		t.Fatalf("expected First, Both and Second chunks, got %+v", chunks)
	}
	if covered != 15 {
		t.Fatalf("chunks should cover up to 15, covered to %d", covered)
	}
}

func TestSplitEmptySideTagsEverythingOtherSide(t *testing.T) {
	b := []*SI{New(0, 4, 1), New(8, 12, 1)}
	chunks := Split(nil, b)
	if len(chunks) != 2 {
		t.Fatalf("Split(nil, b) produced %d chunks, want 2", len(chunks))
	}
	for _, c := range chunks {
		if c.Tag != Second {
			t.Fatalf("every chunk should be Second when a is empty, got %+v", c)
		}
	}
}
