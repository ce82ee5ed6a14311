// Package pdfform reads and fills AcroForm fields of PDF documents.
package pdfform

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"tradeflow/internal/domain"
)

// ReadFields parses formBytes and returns a descriptor for every AcroForm
// field in the document's native field order. Names are returned verbatim.
// Returns domain.ErrMalformedDocument when the bytes are not a parseable PDF.
func ReadFields(formBytes []byte) ([]domain.FieldDescriptor, error) {
	ctx, err := readContext(formBytes)
	if err != nil {
		return nil, err
	}
	infos, err := collectFields(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]domain.FieldDescriptor, len(infos))
	for i, info := range infos {
		descriptors[i] = domain.FieldDescriptor{
			Name:   info.name,
			Kind:   info.kind,
			MaxLen: info.maxLen,
		}
	}
	return descriptors, nil
}

// ReadFieldValues returns the current value of every named field, keyed by
// field name. Text fields yield their string value, button fields the name of
// their appearance state. Used for preview after filling.
func ReadFieldValues(formBytes []byte) (map[string]string, error) {
	ctx, err := readContext(formBytes)
	if err != nil {
		return nil, err
	}
	infos, err := collectFields(ctx)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(infos))
	for _, info := range infos {
		valueObj, found := info.dict.Find("V")
		if !found {
			values[info.name] = ""
			continue
		}
		if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			values[info.name] = name.Value()
			continue
		}
		if s, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			values[info.name] = s
			continue
		}
		values[info.name] = ""
	}
	return values, nil
}

// readContext parses PDF bytes into a pdfcpu context with relaxed validation.
func readContext(formBytes []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(formBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	return ctx, nil
}

// fieldInfo is the internal view of one AcroForm field: enough to describe it
// and to write a value back into its dictionary.
type fieldInfo struct {
	name   string
	kind   domain.FieldKind
	maxLen int
	dict   types.Dict
}

// collectFields walks the AcroForm Fields array. Fields that fail to
// dereference are skipped rather than failing the whole document.
func collectFields(ctx *model.Context) ([]fieldInfo, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	var infos []fieldInfo
	for i, fieldRef := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}

		info := fieldInfo{dict: fieldDict, kind: fieldKind(ctx, fieldDict)}

		if nameObj, found := fieldDict.Find("T"); found {
			if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
				info.name = name
			}
		}
		if info.name == "" {
			info.name = fmt.Sprintf("field_%d", i)
		}

		if maxLenObj, found := fieldDict.Find("MaxLen"); found {
			if maxLen, err := ctx.DereferenceInteger(maxLenObj); err == nil && maxLen != nil {
				info.maxLen = int(*maxLen)
			}
		}

		infos = append(infos, info)
	}
	return infos, nil
}

// fieldKind classifies a field from its FT entry, consulting the parent for
// an inherited type. Radio groups and pushbuttons are not fillable here and
// classify as unknown, as does everything that is not text or a checkbox.
func fieldKind(ctx *model.Context, fieldDict types.Dict) domain.FieldKind {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return fieldKind(ctx, parentDict)
			}
		}
		return domain.FieldKindUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return domain.FieldKindUnknown
	}

	switch ftName {
	case "Tx":
		return domain.FieldKindText
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				flagValue := *flags
				if (flagValue&(1<<15)) != 0 || (flagValue&(1<<16)) != 0 { // radio or pushbutton
					return domain.FieldKindUnknown
				}
			}
		}
		return domain.FieldKindCheckbox
	default:
		return domain.FieldKindUnknown
	}
}
