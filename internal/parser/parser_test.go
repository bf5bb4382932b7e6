package parser

import (
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

const testCSharpSource = `using System;

namespace Greetings
{
    public interface IGreeter
    {
        string Greet(string name);
    }

    public class SimpleGreeter : IGreeter
    {
        private readonly string prefix;

        public SimpleGreeter(string prefix)
        {
            this.prefix = prefix;
        }

        public string Greet(string name)
        {
            return prefix + name;
        }
    }

    public class Program
    {
        public static void Main()
        {
            var greeter = new SimpleGreeter("Hello, ");
            Console.WriteLine(greeter.Greet("World"));
        }
    }
}
`

func TestNewParser(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()
}

func TestParser_Parse(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	t.Run("parses valid C# source", func(t *testing.T) {
		result, err := p.Parse([]byte(testCSharpSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if result.Root == nil {
			t.Fatal("expected non-nil root node")
		}

		if result.Root.Type() != "compilation_unit" {
			t.Errorf("expected root type 'compilation_unit', got %q", result.Root.Type())
		}
	})

	t.Run("preserves source", func(t *testing.T) {
		source := []byte(testCSharpSource)
		result, err := p.Parse(source)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if string(result.Source) != string(source) {
			t.Error("source was not preserved")
		}
	})
}

func TestParseResult_FindNodesByType(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testCSharpSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("finds class declarations", func(t *testing.T) {
		classes := result.FindNodesByType("class_declaration")
		if len(classes) < 2 {
			t.Errorf("expected at least 2 class_declaration nodes, got %d", len(classes))
		}
	})

	t.Run("finds interface declarations", func(t *testing.T) {
		ifaces := result.FindNodesByType("interface_declaration")
		if len(ifaces) != 1 {
			t.Errorf("expected exactly 1 interface_declaration, got %d", len(ifaces))
		}
	})

	t.Run("finds method declarations", func(t *testing.T) {
		methods := result.FindNodesByType("method_declaration")
		if len(methods) < 2 {
			t.Errorf("expected at least 2 method_declaration nodes, got %d", len(methods))
		}
	})

	t.Run("finds constructor declarations", func(t *testing.T) {
		ctors := result.FindNodesByType("constructor_declaration")
		if len(ctors) != 1 {
			t.Errorf("expected exactly 1 constructor_declaration, got %d", len(ctors))
		}
	})
}

func TestParseResult_WalkNodes(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testCSharpSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("visits all nodes", func(t *testing.T) {
		count := 0
		result.WalkNodes(func(node *sitter.Node) bool {
			count++
			return true
		})

		if count == 0 {
			t.Error("expected to visit some nodes")
		}
	})

	t.Run("stops on false return", func(t *testing.T) {
		count := 0
		limit := 5
		result.WalkNodes(func(node *sitter.Node) bool {
			count++
			return count < limit
		})

		if count != limit {
			t.Errorf("expected to visit %d nodes, visited %d", limit, count)
		}
	})
}

func TestParseResult_NodeText(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testCSharpSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	classes := result.FindNodesByType("class_declaration")
	if len(classes) == 0 {
		t.Fatal("no class found")
	}

	text := result.NodeText(classes[0])
	if !strings.Contains(text, "class") {
		t.Errorf("expected class text to contain 'class', got %q", text)
	}
}

func TestParseResult_HasErrors(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	t.Run("valid source has no errors", func(t *testing.T) {
		result, err := p.Parse([]byte(testCSharpSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if result.HasErrors() {
			t.Error("expected no parse errors for valid source")
		}
	})

	t.Run("invalid source has errors", func(t *testing.T) {
		invalidSource := `namespace Broken {
    public class C {
        public void M( {
            return;
        }
    }
}
`
		result, err := p.Parse([]byte(invalidSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if !result.HasErrors() {
			t.Error("expected parse errors for invalid source")
		}
	})
}

func TestIsCSharpEntityNode(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testCSharpSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("identifies class declarations", func(t *testing.T) {
		classes := result.FindNodesByType("class_declaration")
		if len(classes) == 0 {
			t.Fatal("no classes found")
		}
		if !IsCSharpEntityNode(classes[0]) {
			t.Error("class_declaration should be identified as entity")
		}
	})

	t.Run("returns false for nil", func(t *testing.T) {
		if IsCSharpEntityNode(nil) {
			t.Error("nil should not be identified as entity")
		}
	})
}

func TestGetCSharpEntityType(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testCSharpSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("maps method declaration to method", func(t *testing.T) {
		methods := result.FindNodesByType("method_declaration")
		if len(methods) == 0 {
			t.Fatal("no methods found")
		}
		if got := GetCSharpEntityType(methods[0]); got != "method" {
			t.Errorf("expected 'method', got %q", got)
		}
	})

	t.Run("returns empty for unknown types", func(t *testing.T) {
		ids := result.FindNodesByType("identifier")
		if len(ids) == 0 {
			t.Fatal("no identifiers found")
		}
		if got := GetCSharpEntityType(ids[0]); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestParseError(t *testing.T) {
	t.Run("formats with file", func(t *testing.T) {
		err := &ParseError{
			Message: "syntax error",
			File:    "Program.cs",
			Line:    10,
			Column:  5,
		}
		expected := "Program.cs:10:5: syntax error"
		if got := err.Error(); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})

	t.Run("formats without file", func(t *testing.T) {
		err := &ParseError{
			Message: "syntax error",
			Line:    10,
			Column:  5,
		}
		expected := "10:5: syntax error"
		if got := err.Error(); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})
}
