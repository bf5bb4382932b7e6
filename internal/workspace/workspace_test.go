package workspace

import "testing"

func TestTopologicalOrder(t *testing.T) {
	t.Run("orders dependencies before dependents", func(t *testing.T) {
		projects := map[string]*ProjectInfo{
			"a": {Path: "a", ProjectReferences: []string{"b"}},
			"b": {Path: "b", ProjectReferences: []string{"c"}},
			"c": {Path: "c"},
		}
		order, err := topologicalOrder(projects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pos := make(map[string]int, len(order))
		for i, p := range order {
			pos[p] = i
		}
		if pos["c"] > pos["b"] || pos["b"] > pos["a"] {
			t.Errorf("expected order c, b, a; got %v", order)
		}
	})

	t.Run("detects a cycle", func(t *testing.T) {
		projects := map[string]*ProjectInfo{
			"a": {Path: "a", ProjectReferences: []string{"b"}},
			"b": {Path: "b", ProjectReferences: []string{"a"}},
		}
		_, err := topologicalOrder(projects)
		if err == nil {
			t.Fatal("expected a CycleError")
		}
		if _, ok := err.(*CycleError); !ok {
			t.Errorf("expected *CycleError, got %T", err)
		}
	})

	t.Run("ignores references to projects outside the solution", func(t *testing.T) {
		projects := map[string]*ProjectInfo{
			"a": {Path: "a", ProjectReferences: []string{"external"}},
		}
		order, err := topologicalOrder(projects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 1 || order[0] != "a" {
			t.Errorf("expected [a], got %v", order)
		}
	})
}
