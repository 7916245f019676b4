package compiler

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/roach88/netir/internal/ir"
)

// Document validation error codes (E100-E199). Graph-level codes
// (E200-E299) are reported by ir once the document has been converted.
const (
	ErrNoOps              = "E101" // graph declares no operators
	ErrUnknownDataType    = "E102" // data type name not recognized
	ErrTensorValueCount   = "E103" // literal value count != product(dims)
	ErrTensorDataConflict = "E104" // more than one literal form on a tensor
	ErrTensorLiteralKind  = "E105" // literal form does not suit the tensor type
	ErrUnknownEnum        = "E106" // mode or device not recognized
	ErrInvalidBase64      = "E107" // tensor data is not valid base64
	ErrArgNameEmpty       = "E108" // attribute without a name
)

// ValidateDoc checks a graph document before conversion.
// Returns all errors found (does not fail-fast).
func ValidateDoc(doc *GraphDoc) ir.ValidationErrors {
	var errs ir.ValidationErrors
	add := func(code, field, subject, format string, args ...any) {
		errs = append(errs, ir.ValidationError{
			Code:    code,
			Field:   field,
			Subject: subject,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if len(doc.Ops) == 0 {
		add(ErrNoOps, "ops", doc.Name, "graph %q declares no operators", doc.Name)
	}
	if _, err := ir.ParseNetMode(doc.Mode); err != nil {
		add(ErrUnknownEnum, "mode", doc.Name, "%v", err)
	}
	if doc.Device != "" {
		if _, err := ir.ParseDeviceType(doc.Device); err != nil {
			add(ErrUnknownEnum, "device", doc.Name, "%v", err)
		}
	}

	checkType := func(field, subject, name string) {
		if dt, err := ir.ParseDataType(name); err != nil || !dt.Valid() {
			add(ErrUnknownDataType, field, subject, "unknown data type %q", name)
		}
	}
	checkArgs := func(field string, args []ArgDoc) {
		for i, a := range args {
			if strings.TrimSpace(a.Name) == "" {
				add(ErrArgNameEmpty, fmt.Sprintf("%s[%d].name", field, i), "", "attribute %d has no name", i)
			}
		}
	}

	checkArgs("args", doc.Args)
	for i, in := range doc.Inputs {
		checkType(fmt.Sprintf("inputs[%d].type", i), in.Name, in.Type)
	}
	for i, out := range doc.Outputs {
		checkType(fmt.Sprintf("outputs[%d].type", i), out.Name, out.Type)
	}
	for i, op := range doc.Ops {
		field := fmt.Sprintf("ops[%d]", i)
		checkArgs(field+".args", op.Args)
		for j, name := range op.Types {
			checkType(fmt.Sprintf("%s.types[%d]", field, j), op.Name, name)
		}
	}

	for i, t := range doc.Tensors {
		field := fmt.Sprintf("tensors[%d]", i)
		dt, err := ir.ParseDataType(t.Type)
		if err != nil || !dt.Valid() {
			add(ErrUnknownDataType, field+".type", t.Name, "unknown data type %q", t.Type)
			continue
		}

		forms := 0
		for _, set := range []bool{len(t.Floats) > 0, len(t.Ints) > 0, t.Data != ""} {
			if set {
				forms++
			}
		}
		if forms > 1 {
			add(ErrTensorDataConflict, field, t.Name, "tensor %q sets more than one of floats, ints and data", t.Name)
			continue
		}

		count := int64(1)
		for _, d := range t.Dims {
			count *= d
		}
		switch {
		case len(t.Floats) > 0:
			if dt != ir.DTFloat && dt != ir.DTHalf && dt != ir.DTDouble {
				add(ErrTensorLiteralKind, field+".floats", t.Name, "tensor %q of type %s cannot take float literals", t.Name, dt)
			} else if int64(len(t.Floats)) != count {
				add(ErrTensorValueCount, field+".floats", t.Name, "tensor %q has %d values, dims %v need %d", t.Name, len(t.Floats), t.Dims, count)
			}
		case len(t.Ints) > 0:
			if !isIntegerType(dt) {
				add(ErrTensorLiteralKind, field+".ints", t.Name, "tensor %q of type %s cannot take integer literals", t.Name, dt)
			} else if int64(len(t.Ints)) != count {
				add(ErrTensorValueCount, field+".ints", t.Name, "tensor %q has %d values, dims %v need %d", t.Name, len(t.Ints), t.Dims, count)
			}
		case t.Data != "":
			if _, err := base64.StdEncoding.DecodeString(t.Data); err != nil {
				add(ErrInvalidBase64, field+".data", t.Name, "tensor %q data: %v", t.Name, err)
			}
		}
	}

	return errs
}

func isIntegerType(dt ir.DataType) bool {
	switch dt {
	case ir.DTInt8, ir.DTInt16, ir.DTInt32, ir.DTInt64,
		ir.DTUint8, ir.DTUint16, ir.DTUint32, ir.DTBool:
		return true
	}
	return false
}
