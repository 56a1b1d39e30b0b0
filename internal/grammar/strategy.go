package grammar

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Strategy describes one tree-sitter language and its extraction kinds.
type Strategy interface {
	// Language returns the language identifier (e.g., "java", "go").
	Language() string

	// Extensions returns file extensions this strategy handles (e.g., ".java").
	Extensions() []string

	// SitterLanguage returns the tree-sitter Language for parsing.
	SitterLanguage() *sitter.Language

	// Kinds returns the default unit, container and name node kinds.
	Kinds() Kinds
}

// JavaStrategy handles Java. Methods and constructors are units; classes,
// interfaces, enums and records are containers.
type JavaStrategy struct{}

func NewJavaStrategy() *JavaStrategy { return &JavaStrategy{} }

func (s *JavaStrategy) Language() string { return "java" }

func (s *JavaStrategy) Extensions() []string { return []string{".java"} }

func (s *JavaStrategy) SitterLanguage() *sitter.Language { return java.GetLanguage() }

func (s *JavaStrategy) Kinds() Kinds {
	return Kinds{
		Units: []string{
			"method_declaration",
			"constructor_declaration",
		},
		Containers: []string{
			"class_declaration",
			"interface_declaration",
			"enum_declaration",
			"record_declaration",
		},
		Names: []string{"identifier"},
	}
}

// GoStrategy handles Go. Go has no lexical containers for methods, so
// units extracted from Go never carry an enclosing name.
type GoStrategy struct{}

func NewGoStrategy() *GoStrategy { return &GoStrategy{} }

func (s *GoStrategy) Language() string { return "go" }

func (s *GoStrategy) Extensions() []string { return []string{".go"} }

func (s *GoStrategy) SitterLanguage() *sitter.Language { return golang.GetLanguage() }

func (s *GoStrategy) Kinds() Kinds {
	return Kinds{
		Units: []string{
			"function_declaration",
			"method_declaration",
		},
		// method names are field_identifier nodes
		Names: []string{"identifier", "field_identifier"},
	}
}

// PythonStrategy handles Python.
type PythonStrategy struct{}

func NewPythonStrategy() *PythonStrategy { return &PythonStrategy{} }

func (s *PythonStrategy) Language() string { return "python" }

func (s *PythonStrategy) Extensions() []string { return []string{".py", ".pyw"} }

func (s *PythonStrategy) SitterLanguage() *sitter.Language { return python.GetLanguage() }

func (s *PythonStrategy) Kinds() Kinds {
	return Kinds{
		Units:      []string{"function_definition"},
		Containers: []string{"class_definition"},
		Names:      []string{"identifier"},
	}
}

// JavaScriptStrategy handles JavaScript.
type JavaScriptStrategy struct{}

func NewJavaScriptStrategy() *JavaScriptStrategy { return &JavaScriptStrategy{} }

func (s *JavaScriptStrategy) Language() string { return "javascript" }

func (s *JavaScriptStrategy) Extensions() []string { return []string{".js", ".mjs", ".cjs", ".jsx"} }

func (s *JavaScriptStrategy) SitterLanguage() *sitter.Language { return javascript.GetLanguage() }

func (s *JavaScriptStrategy) Kinds() Kinds {
	return Kinds{
		Units: []string{
			"function_declaration",
			"generator_function_declaration",
			"method_definition",
		},
		Containers: []string{"class_declaration"},
		Names:      []string{"identifier", "property_identifier"},
	}
}
