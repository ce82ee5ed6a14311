package gemini

import (
	"encoding/json"
	"fmt"
)

// extractionPrompt asks the model for the full invoice/estimate schema. The
// response schema mirrors domain.ExtractedData's JSON shape.
const extractionPrompt = `You are an expert data entry assistant for an HVAC/Plumbing business. ` +
	`Extract all data from this document. Capture the Customer's details AND the Company/Vendor's details explicitly. ` +
	`If a field is missing, leave it as an empty string or 0. Ensure currency values are numbers. ` +
	`Return a valid JSON object matching the schema: ` +
	`{ customerName, customerAddress, customerPhone, companyName, companyAddress, companyPhone, companyEmail, ` +
	`serviceDate, invoiceNumber, subtotal, tax, total, notes, ` +
	`lineItems: [{ description, quantity, unitPrice, amount }] }`

// suggestionPrompt builds the smart-match prompt for one form's field names
// against the known data keys.
func suggestionPrompt(fieldNames, knownKeys []string) string {
	fields, _ := json.Marshal(fieldNames)
	keys, _ := json.Marshal(knownKeys)

	return fmt.Sprintf(`You are an expert at mapping PDF form fields to data extracted from invoices/estimates.

Here are the PDF form fields found:
%s

Here are the data keys available from the extraction:
%s

Task:
Create a mapping where each relevant PDF field is assigned one data key.
- Match loosely based on meaning (e.g. "BillTo_Name" -> "customerName", "Vendor_Name" -> "companyName").
- PRIORITIZE exact matches.
- If a PDF field asks for "Total", map to "total". If "Subtotal", map to "subtotal".
- "lineItems" should be mapped to the main description or table area of the PDF.
- Ignore PDF fields that don't have a corresponding data key.

Return ONLY a valid JSON array of objects with this structure:
[ { "targetField": "string", "sourceKey": "string" } ]`, fields, keys)
}
