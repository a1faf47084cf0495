// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package wire implements the parameter-bundle wire codec (§6): a
// self-describing, tagged JSON representation of a scan request, lossless
// round-tripped through mapper.Request via dtype's anonymous value
// formats. This is the on-wire contract every out-of-process command
// channel named in spec.md §1's Non-goals would use to drive the kernel;
// this package pins the contract without implementing a channel itself.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/scanerr"
	"github.com/squalr/scanengine/simdscan"
	"github.com/squalr/scanengine/value"
	"v.io/x/lib/vlog"
)

// Bundle is the self-describing wire shape of a scan request: a compare-type
// family tag, the inner predicate variant, a data-type id, an operand
// rendered in one of dtype's canonical anonymous formats, and the format tag
// itself so the decoder knows how to parse it back.
type Bundle struct {
	Family            string  `json:"family"`
	Predicate         string  `json:"predicate"`
	DataType          string  `json:"data_type"`
	Format            string  `json:"format,omitempty"`
	Operand           string  `json:"operand,omitempty"`
	Tolerance         float64 `json:"tolerance,omitempty"`
	AlignmentOverride int     `json:"alignment_override,omitempty"`
}

var familyNames = map[simdscan.Family]string{
	simdscan.ImmediateFamily: "Immediate",
	simdscan.RelativeFamily:  "Relative",
	simdscan.DeltaFamily:     "Delta",
}

var predicateByName = func() map[string]simdscan.Predicate {
	all := []simdscan.Predicate{
		simdscan.Equal, simdscan.NotEqual, simdscan.GreaterThan, simdscan.GreaterThanOrEqual,
		simdscan.LessThan, simdscan.LessThanOrEqual, simdscan.Changed, simdscan.Unchanged,
		simdscan.Increased, simdscan.Decreased, simdscan.IncreasedBy, simdscan.DecreasedBy,
		simdscan.MultipliedBy, simdscan.DividedBy, simdscan.ModuloBy, simdscan.ShiftLeftBy,
		simdscan.ShiftRightBy, simdscan.LogicalAnd, simdscan.LogicalOr, simdscan.LogicalXor,
	}
	m := make(map[string]simdscan.Predicate, len(all))
	for _, p := range all {
		m[p.String()] = p
	}
	return m
}()

var formatNames = map[dtype.Format]string{
	dtype.FormatDecimal:   "decimal",
	dtype.FormatHex:       "hex",
	dtype.FormatBinary:    "binary",
	dtype.FormatByteArray: "byte_array",
}

var formatByName = map[string]dtype.Format{
	"decimal":    dtype.FormatDecimal,
	"hex":        dtype.FormatHex,
	"binary":     dtype.FormatBinary,
	"byte_array": dtype.FormatByteArray,
	"":           dtype.FormatDecimal,
}

// Encode renders req as a Bundle, anonymizing its operand in format.
func Encode(registry *dtype.Registry, req mapper.Request, format dtype.Format) (Bundle, error) {
	d, err := registry.Get(req.DataTypeID)
	if err != nil {
		return Bundle{}, err
	}
	b := Bundle{
		Family:            familyNames[req.Predicate.Family()],
		Predicate:         req.Predicate.String(),
		DataType:          d.ID,
		Format:            formatNames[format],
		Tolerance:         req.Tolerance,
		AlignmentOverride: req.AlignmentOverride,
	}
	if req.Predicate.NeedsOperand() && len(req.Operand) > 0 {
		s, err := d.AnonymizeValue(value.New(d.ID, req.Operand), format)
		if err != nil {
			return Bundle{}, err
		}
		b.Operand = s
	}
	return b, nil
}

// Decode parses b back into a mapper.Request, resolving the data type and
// operand against registry. It is the exact inverse of Encode.
func Decode(registry *dtype.Registry, b Bundle) (mapper.Request, error) {
	pred, ok := predicateByName[b.Predicate]
	if !ok {
		vlog.Errorf("wire.Decode: unrecognized predicate tag %q in bundle for data type %q", b.Predicate, b.DataType)
		return mapper.Request{}, scanerr.New(scanerr.BadParameter, "wire.Decode",
			errors.Wrap(fmt.Errorf("unrecognized predicate tag %q", b.Predicate), "parsing wire bundle"))
	}
	d, err := registry.Get(b.DataType)
	if err != nil {
		vlog.Errorf("wire.Decode: unresolvable data type %q: %v", b.DataType, err)
		return mapper.Request{}, err
	}
	format, ok := formatByName[b.Format]
	if !ok {
		vlog.Errorf("wire.Decode: unrecognized format tag %q in bundle for data type %q", b.Format, b.DataType)
		return mapper.Request{}, scanerr.New(scanerr.BadParameter, "wire.Decode",
			fmt.Errorf("unrecognized format tag %q", b.Format))
	}

	req := mapper.Request{
		Predicate:         pred,
		DataTypeID:        d.ID,
		Tolerance:         b.Tolerance,
		AlignmentOverride: b.AlignmentOverride,
	}
	if pred.NeedsOperand() && b.Operand != "" {
		v, err := d.DeanonymizeValueString(b.Operand, format)
		if err != nil {
			return mapper.Request{}, err
		}
		req.Operand = v.Bytes
	}
	return req, nil
}

// Marshal is a convenience wrapper around Encode + json.Marshal.
func Marshal(registry *dtype.Registry, req mapper.Request, format dtype.Format) ([]byte, error) {
	b, err := Encode(registry, req, format)
	if err != nil {
		return nil, err
	}
	return json.Marshal(b)
}

// Unmarshal is a convenience wrapper around json.Unmarshal + Decode.
func Unmarshal(registry *dtype.Registry, data []byte) (mapper.Request, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return mapper.Request{}, scanerr.New(scanerr.BadParameter, "wire.Unmarshal", errors.Wrap(err, "invalid wire bundle JSON"))
	}
	return Decode(registry, b)
}
