package stability

import "testing"

func TestCommitByStability(t *testing.T) {
	tr := New(2, 10.0, 20)

	var last Result
	for i := 0; i < 3; i++ {
		last = tr.Process("hello world", 0.0, false)
	}

	if last.Committed != "hello world" {
		t.Fatalf("expected committed 'hello world', got %q", last.Committed)
	}
	if last.Pending != "" {
		t.Fatalf("expected empty pending, got %q", last.Pending)
	}
}

func TestCommitBySilence(t *testing.T) {
	tr := New(10, 0.6, 20)

	result := tr.Process("hello", 0.7, false)
	if result.Committed != "hello" {
		t.Fatalf("expected committed 'hello', got %q", result.Committed)
	}
}

func TestMergeWithOverlap(t *testing.T) {
	tr := New(100, 100, 20)
	tr.committed = "the quick brown fox"

	merged := tr.merge("brown fox jumps over")
	if merged != "the quick brown fox jumps over" {
		t.Fatalf("unexpected merge result: %q", merged)
	}
}

func TestMergeNoOverlapForcesAppend(t *testing.T) {
	tr := New(100, 100, 20)
	tr.committed = "good morning"

	merged := tr.merge("totally unrelated text")
	if merged != "good morning totally unrelated text" {
		t.Fatalf("unexpected forced append: %q", merged)
	}
}

func TestMergeIdempotent(t *testing.T) {
	tr := New(100, 100, 20)
	tr.committed = "the cat sat"

	if got := tr.merge("the cat sat"); got != "the cat sat" {
		t.Fatalf("merge(committed, committed) = %q, want committed", got)
	}
	if got := tr.merge("the cat sat on the mat"); got != "the cat sat on the mat" {
		t.Fatalf("merge(committed, committed+suffix) = %q, want committed+suffix", got)
	}
}

func TestFinalPass(t *testing.T) {
	tr := New(2, 10.0, 20)
	tr.Process("hello", 0, false)
	tr.Process("hello world", 0, false)

	result := tr.Process("hello world again", 0, true)
	if !result.IsFinal {
		t.Fatal("expected is_final true")
	}
	if result.Committed != "hello world again" {
		t.Fatalf("expected committed 'hello world again', got %q", result.Committed)
	}
	if result.Pending != "" {
		t.Fatalf("expected empty pending on final pass, got %q", result.Pending)
	}
}

func TestFinalPassIdempotent(t *testing.T) {
	tr := New(2, 10.0, 20)
	first := tr.Process("hello world", 0, true)
	second := tr.Process("hello world", 0, true)

	if first != second {
		t.Fatalf("expected identical results for repeated identical final pass, got %+v vs %+v", first, second)
	}
}

func TestPendingTrackedBeforeCommit(t *testing.T) {
	tr := New(5, 10.0, 20)
	result := tr.Process("hello world", 0, false)

	if result.Committed != "" {
		t.Fatalf("expected no commit yet, got committed=%q", result.Committed)
	}
	if result.Pending != "hello world" {
		t.Fatalf("expected pending to carry full text, got %q", result.Pending)
	}
	if result.Full != "hello world" {
		t.Fatalf("expected full text 'hello world', got %q", result.Full)
	}
}
