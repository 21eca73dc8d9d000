package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType represents the type of input code fence in a Sexy test
type InputType string

const (
	InputTypeKfeExpr    InputType = "kfe-expr"
	InputTypeKfeProgram InputType = "kfe-program"
)

// AssertionType represents the type of assertion code fence in a Sexy test
type AssertionType string

const (
	// AssertionTypeAST holds an s-expression pattern for the syntax tree.
	AssertionTypeAST AssertionType = "ast"
	// AssertionTypeIR holds lines that must appear, in order, in the
	// printed IR.
	AssertionTypeIR AssertionType = "ir"
	// AssertionTypeExecute holds the expected output of running the program.
	AssertionTypeExecute AssertionType = "execute"
	// AssertionTypeCompileError holds a fragment of the expected error.
	AssertionTypeCompileError AssertionType = "compile-error"
)

var inputFences = map[string]bool{
	string(InputTypeKfeExpr):    true,
	string(InputTypeKfeProgram): true,
}

var assertionFences = map[string]bool{
	string(AssertionTypeAST):          true,
	string(AssertionTypeIR):           true,
	string(AssertionTypeExecute):      true,
	string(AssertionTypeCompileError): true,
}

// Assertion represents a single assertion in a Sexy test
type Assertion struct {
	Type       AssertionType
	Content    string // raw content of the fence
	ParsedSexy *Node  // set for AssertionTypeAST only
}

// TestCase represents a complete Sexy test case extracted from Markdown
type TestCase struct {
	Name       string // heading text after "Test: "
	Input      string
	InputType  InputType
	Line       int // line of the input fence
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and extracts all Sexy test cases
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validateTestCase(current); err != nil {
			return err
		}
		testCases = append(testCases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if name, ok := strings.CutPrefix(headingText, "Test: "); ok {
				if err := flush(); err != nil {
					return ast.WalkStop, err
				}
				current = &TestCase{Name: name}
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			lineNum := getLineNumber(n, source)
			if language == "" {
				// Plain code blocks are prose.
				return ast.WalkContinue, nil
			}
			if !inputFences[language] && !assertionFences[language] {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s'", lineNum, language)
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
			}

			content := strings.TrimRight(extractCodeBlockContent(n, source), "\n")
			if inputFences[language] {
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, current.Name)
				}
				current.Input = content
				current.InputType = InputType(language)
				current.Line = lineNum
				return ast.WalkContinue, nil
			}

			assertion := Assertion{Type: AssertionType(language), Content: content}
			if assertion.Type == AssertionTypeAST {
				parsed, err := Parse(content)
				if err != nil {
					return ast.WalkStop, fmt.Errorf("line %d: failed to parse Sexy assertion in test '%s': %w", lineNum, current.Name, err)
				}
				assertion.ParsedSexy = parsed
			}
			current.Assertions = append(current.Assertions, assertion)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return testCases, nil
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := codeBlock.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// validateTestCase ensures a test case has both input and at least one assertion
func validateTestCase(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	return nil
}

// getLineNumber calculates the line number of a given AST node
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	return bytes.Count(source[:min(startPos, len(source))], []byte{'\n'}) + 1
}
