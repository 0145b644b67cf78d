package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	ConvertToMarkdownDescription = `Convert a PDF or DOCX document into clean Markdown.

**When to use:** Need the readable content of a document with its structure intact, ready for an LLM, a wiki or a search index.

**Why it's useful:** Rebuilds headings from font sizes, keeps tables as Markdown tables, drops repeated page headers, footers and page numbers, and falls back to OCR for scanned pages.

**Examples:**
• Summarize a report: "Convert quarterly-report.pdf to Markdown and summarize the findings"
• Import a memo: "Convert policy-memo.docx so it can be added to the knowledge base"
• Extract a price list: "Convert catalog.pdf and read the tables"

**Common workflows:**
1. Analysis: convert_info → convert_to_markdown → summarize or answer questions
2. Migration: convert_to_markdown → review headings → publish

**Best practices:** Paths are resolved against the server's document directory. Pages are separated by "---" in PDF output.`

	ConvertInfoDescription = `Describe a PDF or DOCX document without converting it.

**When to use:** Before converting a large document, or to check that a file is readable at all.

**Why it's useful:** Reports format, size, page count, PDF version and encryption, or paragraph and table counts for DOCX, at a fraction of the cost of a full conversion.

**Examples:**
• Size check: "How many pages does annual-report.pdf have?"
• Readability check: "Is contract.pdf encrypted?"

**Best practices:** Use on unknown uploads first; encrypted PDFs cannot be converted.`

	ConvertServerInfoDescription = `Get server information, supported formats and the configured document directory.

**When to use:** At the start of a session to learn where documents are read from and which tools exist.

**Why it's useful:** Lists every tool with its description, the maximum accepted file size and whether OCR is enabled.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"convert_to_markdown": ConvertToMarkdownDescription,
	"convert_info":        ConvertInfoDescription,
	"convert_server_info": ConvertServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all available tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
