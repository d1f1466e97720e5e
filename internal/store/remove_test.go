package store

import (
	"context"
	"testing"
)

func TestCountEntityTree(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.AddEntity(ctx, 1, nil, "Root"); err != nil {
		t.Fatalf("AddEntity() failed: %v", err)
	}
	addChild(t, s, 2, 1, "Child A")
	addChild(t, s, 3, 1, "Child B")
	addChild(t, s, 4, 2, "Grandchild")

	n, err := s.CountEntityTree(ctx, 1)
	if err != nil {
		t.Fatalf("CountEntityTree() failed: %v", err)
	}
	if n != 4 {
		t.Errorf("CountEntityTree(1) = %d, want 4", n)
	}

	n, err = s.CountEntityTree(ctx, 2)
	if err != nil {
		t.Fatalf("CountEntityTree() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountEntityTree(2) = %d, want 2", n)
	}

	// A leaf, and an entity that does not exist at all, both count one:
	// the cascade still issues deletes for the root cik regardless.
	n, err = s.CountEntityTree(ctx, 4)
	if err != nil || n != 1 {
		t.Errorf("CountEntityTree(4) = %d, %v, want 1", n, err)
	}
}

func TestRemoveEntity_Cascade(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Root Corp", 1, "2020", "Q1")
	addChild(t, s, 2, 1, "Child A")
	addChild(t, s, 3, 1, "Child B")
	addChild(t, s, 4, 2, "Grandchild")
	storeQuarter(t, s, "Child A", 2, "2020", "Q2")
	storeQuarter(t, s, "Grandchild", 4, "2021", "Q3")
	// Sibling tree that must survive.
	storeQuarter(t, s, "Bystander Corp", 9, "2020", "Q4")

	if err := s.RemoveEntity(ctx, 1, nil); err != nil {
		t.Fatalf("RemoveEntity() failed: %v", err)
	}

	entities, err := s.EntityTree(ctx)
	if err != nil {
		t.Fatalf("EntityTree() failed: %v", err)
	}
	if len(entities) != 1 || entities[0].CIK != 9 {
		t.Errorf("surviving entities = %+v, want only cik 9", entities)
	}

	for _, cik := range []int{1, 2, 4} {
		tokens, err := s.FilingsAvailable(ctx, cik)
		if err != nil {
			t.Fatalf("FilingsAvailable(%d) failed: %v", cik, err)
		}
		if len(tokens) != 0 {
			t.Errorf("cik %d still has filings %v after cascade", cik, tokens)
		}
	}

	// 2021 held only the grandchild's filing, so the table is dropped.
	exists, err := s.TableExists(ctx, "filings2021")
	if err != nil {
		t.Fatalf("TableExists() failed: %v", err)
	}
	if exists {
		t.Error("filings2021 should be dropped once emptied")
	}
	exists, err = s.TableExists(ctx, "filings2020")
	if err != nil || !exists {
		t.Errorf("filings2020 should survive, bystander row remains: %v", err)
	}
}

func TestRemoveEntity_ProgressMonotonic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Root Corp", 1, "2020", "Q1")
	addChild(t, s, 2, 1, "Child A")
	addChild(t, s, 3, 1, "Child B")

	var reports []int
	err := s.RemoveEntity(ctx, 1, func(p int) { reports = append(reports, p) })
	if err != nil {
		t.Fatalf("RemoveEntity() failed: %v", err)
	}

	if len(reports) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] < reports[i-1] {
			t.Errorf("progress regressed: %v", reports)
			break
		}
	}
	for _, p := range reports {
		if p < 0 || p > 100 {
			t.Errorf("progress %d out of range: %v", p, reports)
		}
	}
	if reports[len(reports)-1] != 100 {
		t.Errorf("final progress = %d, want 100", reports[len(reports)-1])
	}
}

func TestRemoveEntity_CycleGuard(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.AddEntity(ctx, 1, nil, "A"); err != nil {
		t.Fatalf("AddEntity() failed: %v", err)
	}
	addChild(t, s, 2, 1, "B")
	// Close the loop: A becomes B's child too.
	p := 2
	if _, err := s.UpdateParent(ctx, 1, &p); err != nil {
		t.Fatalf("UpdateParent() failed: %v", err)
	}

	// Must terminate and remove both despite the cycle.
	if err := s.RemoveEntity(ctx, 1, nil); err != nil {
		t.Fatalf("RemoveEntity() failed: %v", err)
	}
	entities, err := s.EntityTree(ctx)
	if err != nil {
		t.Fatalf("EntityTree() failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("entities remain after cyclic removal: %+v", entities)
	}
}

func TestRemoveFiling_QuarterForm(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Example Corp", 1, "2021", "Q1")
	storeQuarter(t, s, "Example Corp", 1, "2021", "Q2")

	if err := s.RemoveFiling(ctx, 1, "q12021", nil); err != nil {
		t.Fatalf("RemoveFiling() failed: %v", err)
	}

	gone, err := s.SelectFiling(ctx, 1, "q12021")
	if err != nil {
		t.Fatalf("SelectFiling() failed: %v", err)
	}
	if gone != nil {
		t.Error("q1 still present after removal")
	}
	kept, err := s.SelectFiling(ctx, 1, "q22021")
	if err != nil || kept == nil {
		t.Errorf("q2 should survive q1 removal: %v %v", kept, err)
	}

	// Entities row untouched.
	if _, found, err := s.NameFromCik(ctx, 1); err != nil || !found {
		t.Errorf("entity row should survive filing removal: found=%v err=%v", found, err)
	}
}

func TestRemoveFiling_YearForm(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Example Corp", 1, "2021", "Q1")
	storeQuarter(t, s, "Example Corp", 1, "2021", "Q3")
	storeQuarter(t, s, "Other Corp", 2, "2021", "Q2")

	if err := s.RemoveFiling(ctx, 1, "2021", nil); err != nil {
		t.Fatalf("RemoveFiling() failed: %v", err)
	}

	tokens, err := s.FilingsAvailable(ctx, 1)
	if err != nil {
		t.Fatalf("FilingsAvailable() failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("cik 1 still has filings %v after year removal", tokens)
	}
	tokens, err = s.FilingsAvailable(ctx, 2)
	if err != nil {
		t.Fatalf("FilingsAvailable() failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Errorf("cik 2 filings = %v, should be untouched", tokens)
	}
}

func TestRemoveFiling_DropsEmptyTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Example Corp", 1, "2021", "Q2")

	if err := s.RemoveFiling(ctx, 1, "2021", nil); err != nil {
		t.Fatalf("RemoveFiling() failed: %v", err)
	}

	exists, err := s.TableExists(ctx, "filings2021")
	if err != nil {
		t.Fatalf("TableExists() failed: %v", err)
	}
	if exists {
		t.Error("filings2021 should be dropped once emptied")
	}
}

func TestRemoveFiling_ClearedQuarterRowDrop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Example Corp", 1, "2021", "Q2")

	// Nulling the only populated quarter leaves the row, so the table
	// still has rows and survives the sweep.
	if err := s.RemoveFiling(ctx, 1, "q22021", nil); err != nil {
		t.Fatalf("RemoveFiling() failed: %v", err)
	}
	exists, err := s.TableExists(ctx, "filings2021")
	if err != nil || !exists {
		t.Errorf("filings2021 should survive a quarter clear: %v", err)
	}
}

func TestRemoveFiling_Progress(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	storeQuarter(t, s, "Example Corp", 1, "2021", "Q2")

	var reports []int
	if err := s.RemoveFiling(ctx, 1, "q22021", func(p int) { reports = append(reports, p) }); err != nil {
		t.Fatalf("RemoveFiling() failed: %v", err)
	}
	want := []int{33, 66, 100}
	if len(reports) != len(want) {
		t.Fatalf("progress = %v, want %v", reports, want)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("progress = %v, want %v", reports, want)
			break
		}
	}
}

func TestRemoveFiling_InvalidPeriod(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, period := range []string{"", "q2", "q52021", "20x1", "q2-2021"} {
		if err := s.RemoveFiling(ctx, 1, period, nil); err == nil {
			t.Errorf("RemoveFiling(%q) succeeded, want error", period)
		}
	}
}

func TestRemoveFiling_MissingTable(t *testing.T) {
	s := createTestStore(t)
	if err := s.RemoveFiling(context.Background(), 1, "q21999", nil); err != nil {
		t.Errorf("removal against missing table should be a no-op, got %v", err)
	}
}
