package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	FormListDocumentsDescription = `List the administrative documents this server can fill.

**When to use:** Before filling anything, to learn the document ids, the languages each document is available in and the field keys it reads.

**Why it's useful:** Field keys are shared between documents, so one set of values can fill a whole onboarding file.

**Examples:**
• Discover ids: "Which documents can you fill?"
• Plan a request: "Which keys does the procuration read?"

**Best practices:** Build the values object from the union of the keys of the documents you intend to fill.`

	FormFillDocumentDescription = `Fill one document with field values and return the completed PDF.

**When to use:** One form is needed, e.g. the employer information sheet for a new client.

**Why it's useful:** Values are printed at calibrated positions on the official template, so the result is the real form, not a look-alike.

**Examples:**
• Employer sheet: document "employer", values {"recu_par": "Marie Dubois", "forme_juridique": "SRL"}
• Dutch attestation: document "seppt", language "nl", values {"nom_societe": "ACME"}

**Value rules:**
• Empty strings, false, null and absent keys are not drawn
• Checkbox groups take the option text, e.g. forme_juridique = "SRL"
• true draws an X mark

**Best practices:** Use form_list_documents first; an unknown document id returns a not found error.`

	FormFillBatchDescription = `Fill several documents from one set of values and return them as a ZIP archive.

**When to use:** A complete onboarding file is needed: employer sheet, attestations, procuration, contract.

**Why it's useful:** Each document reads the keys it needs from the shared values. Static companions such as general conditions are added once.

**Examples:**
• Onboarding: documents ["employer", "seppt", "accident", "procuration"], values {...}
• Mixed languages: languages {"seppt": "nl"}

**Behaviour:** Archive entries follow the request order. A document that fails is omitted and reported; the batch fails only when nothing could be generated.`

	FormServerInfoDescription = `Report server configuration and the health of the installed template files.

**When to use:** A fill fails with a configuration error, or before a large batch.

**Why it's useful:** Lists every template and companion file with its page count, and flags the ones that are missing or unreadable.

**Best practices:** Run after deploying new templates.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"form_list_documents": FormListDocumentsDescription,
	"form_fill_document":  FormFillDocumentDescription,
	"form_fill_batch":     FormFillBatchDescription,
	"form_server_info":    FormServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted list of all tool names
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
