package render

import (
	"fmt"
	"regexp"

	"github.com/nguyenthenguyen/docx"
)

// placeholderPattern matches {{name}} and {{field.N}} expressions, with
// optional padding spaces, inside the document XML.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}\}`)

// Document renders the docx template at templatePath into outputPath.
// Each context field expands across fixed positions: {{field.0}} through
// {{field.N}}. Substituted text is XML-escaped by the docx library, so user
// text can never inject document markup. A template placeholder with no
// context binding is a hard error; unused context keys are fine.
func (Renderer) RenderDocument(templatePath, outputPath string, ctx map[string][]string) error {
	tmpl, err := docx.ReadDocxFile(templatePath)
	if err != nil {
		return fmt.Errorf("open document template %s: %w", templatePath, err)
	}
	defer tmpl.Close()

	doc := tmpl.Editable()
	bindings := expandEntries(ctx)

	if err := checkBindings(doc.GetContent(), bindings); err != nil {
		return err
	}

	for key, text := range bindings {
		// Both the canonical and the space-padded spelling.
		if err := doc.Replace("{{"+key+"}}", text, -1); err != nil {
			return fmt.Errorf("substitute %q: %w", key, err)
		}
		if err := doc.Replace("{{ "+key+" }}", text, -1); err != nil {
			return fmt.Errorf("substitute %q: %w", key, err)
		}
	}

	if err := doc.WriteToFile(outputPath); err != nil {
		return fmt.Errorf("write document %s: %w", outputPath, err)
	}
	return nil
}

// expandEntries flattens field lists into positional placeholder keys.
func expandEntries(ctx map[string][]string) map[string]string {
	bindings := make(map[string]string, len(ctx))
	for field, entries := range ctx {
		for i, text := range entries {
			bindings[fmt.Sprintf("%s.%d", field, i)] = text
		}
	}
	return bindings
}

// checkBindings fails when the template references a placeholder the
// context does not bind.
func checkBindings(content string, bindings map[string]string) error {
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if _, ok := bindings[m[1]]; !ok {
			return fmt.Errorf("template placeholder {{%s}} has no binding", m[1])
		}
	}
	return nil
}
