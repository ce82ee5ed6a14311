package pdfform

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"tradeflow/internal/domain"
)

// Fill applies the mapping to a fresh in-memory copy of formBytes and returns
// the filled document. Mapping entries naming fields absent from the form are
// skipped silently; fields of unknown kind are never written. Returns
// domain.ErrMalformedDocument under the same conditions as ReadFields.
func Fill(formBytes []byte, data *domain.ExtractedData, mappings []domain.FieldMapping) ([]byte, error) {
	ctx, err := readContext(formBytes)
	if err != nil {
		return nil, err
	}
	infos, err := collectFields(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]fieldInfo, len(infos))
	for _, info := range infos {
		byName[info.name] = info
	}

	for _, m := range mappings {
		info, ok := byName[m.TargetField]
		if !ok {
			// Mappings can be stale relative to an edited form.
			continue
		}

		value := deriveValue(data, m)

		switch info.kind {
		case domain.FieldKindText:
			if info.maxLen > 0 {
				if runes := []rune(value); len(runes) > info.maxLen {
					value = string(runes[:info.maxLen])
				}
			}
			info.dict["V"] = textLiteral(value)
			// Drop any stale appearance stream; NeedAppearances below makes
			// viewers regenerate it.
			delete(info.dict, "AP")
		case domain.FieldKindCheckbox:
			if isTruthy(value) {
				on := onStateName(ctx, info.dict)
				info.dict["V"] = on
				info.dict["AS"] = on
			}
			// A non-truthy value leaves the box as-is, it never unchecks.
		}
	}

	setNeedAppearances(ctx)

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("writing filled document: %w", err)
	}
	return buf.Bytes(), nil
}

// deriveValue resolves a mapping entry to the string to fill, in priority
// order: manual override, aggregate line-item rendering, data lookup. An
// absent source key yields the empty string.
func deriveValue(data *domain.ExtractedData, m domain.FieldMapping) string {
	switch m.SourceKey {
	case domain.ManualKey:
		return m.ManualValue
	case domain.LineItemsKey:
		if data == nil {
			return ""
		}
		return renderLineItems(data.LineItems)
	default:
		if data == nil {
			return ""
		}
		value, ok := data.Lookup(m.SourceKey)
		if !ok {
			return ""
		}
		return value
	}
}

// renderLineItems joins items as "{quantity}x {description} (${amount})"
// lines in their existing order.
func renderLineItems(items []domain.LineItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%sx %s ($%s)",
			domain.FormatNumber(item.Quantity), item.Description, domain.FormatNumber(item.Amount))
	}
	return strings.Join(lines, "\n")
}

// isTruthy implements the checkbox truth set: "true", "1", "yes",
// case-insensitively. Everything else is not truthy.
func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// onStateName finds the checkbox's on-state from its normal appearance
// dictionary, defaulting to /Yes when none is declared.
func onStateName(ctx *model.Context, fieldDict types.Dict) types.Name {
	if apObj, found := fieldDict.Find("AP"); found {
		if apDict, err := ctx.DereferenceDict(apObj); err == nil && apDict != nil {
			if nObj, found := apDict.Find("N"); found {
				if nDict, err := ctx.DereferenceDict(nObj); err == nil && nDict != nil {
					for state := range nDict {
						if state != "Off" {
							return types.Name(state)
						}
					}
				}
			}
		}
	}
	return types.Name("Yes")
}

// setNeedAppearances asks viewers to regenerate field appearance streams for
// the values written by Fill.
func setNeedAppearances(ctx *model.Context) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return
	}
	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return
	}
	if acroFormDict, err := ctx.DereferenceDict(acroFormObj); err == nil && acroFormDict != nil {
		acroFormDict["NeedAppearances"] = types.Boolean(true)
	}
}

// textLiteral encodes a field value as a UTF-16BE hex literal so arbitrary
// characters survive the PDF string encoding.
func textLiteral(s string) types.Object {
	encoded := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2+len(encoded)*2)
	b = append(b, 0xFE, 0xFF)
	for _, u := range encoded {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.NewHexLiteral(b)
}
