package symbol

import "testing"

func TestIDKey(t *testing.T) {
	t.Run("formats non-generic method", func(t *testing.T) {
		id := New("Calc.Program.Calc", "Add", []string{"int", "int"}, 0)
		want := "Calc.Program.Calc.Add(int,int)"
		if got := id.Key(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("encodes generic arity into the name", func(t *testing.T) {
		id := New("Collections.Repository", "Find", []string{"string"}, 1)
		want := "Collections.Repository.Find`1(string)"
		if got := id.Key(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("constructor uses .ctor", func(t *testing.T) {
		id := New("Models.User", Constructor, []string{"string"}, 0)
		want := "Models.User..ctor(string)"
		if got := id.Key(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("copies parameter slice", func(t *testing.T) {
		params := []string{"int"}
		id := New("T", "M", params, 0)
		params[0] = "mutated"
		if id.ParameterTypes[0] != "int" {
			t.Error("New should copy the parameter slice, not alias it")
		}
	})

	t.Run("overloads differ by parameter types", func(t *testing.T) {
		a := New("T", "M", []string{"int"}, 0)
		b := New("T", "M", []string{"string"}, 0)
		if a.Key() == b.Key() {
			t.Error("overloads with different parameter types must produce different keys")
		}
	})
}

func TestParseKey(t *testing.T) {
	cases := []ID{
		New("Calc.Program.Calc", "Add", []string{"int", "int"}, 0),
		New("Collections.Repository", "Find", []string{"string"}, 1),
		New("Models.User", Constructor, []string{"string"}, 0),
		New("Billing.Invoice", "Total", nil, 0),
	}
	for _, want := range cases {
		got, err := ParseKey(want.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", want.Key(), err)
		}
		if got.Key() != want.Key() {
			t.Errorf("round trip: want %q, got %q", want.Key(), got.Key())
		}
	}
}

func TestParseKey_Invalid(t *testing.T) {
	if _, err := ParseKey("no-parens"); err == nil {
		t.Error("expected error for missing parameter list")
	}
	if _, err := ParseKey("NoDot(int)"); err == nil {
		t.Error("expected error for missing type.method separator")
	}
}
