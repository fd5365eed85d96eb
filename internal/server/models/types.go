package models

import (
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
)

// DataType is the closed set of concept data types.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeBoolean DataType = "boolean"
	DataTypeNumber  DataType = "number"
	DataTypeComplex DataType = "complex"
)

var dataTypes = map[DataType]struct{}{
	DataTypeString:  {},
	DataTypeBoolean: {},
	DataTypeNumber:  {},
	DataTypeComplex: {},
}

// ParseDataType accepts the empty string (no data type) or a member of the
// enumeration, and rejects everything else with common.ErrConstraintViolation.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate reports whether t is empty or a known data type.
func (t DataType) Validate() error {
	if t == "" {
		return nil
	}
	if _, ok := dataTypes[t]; !ok {
		return fmt.Errorf("%w: invalid data type %q", common.ErrConstraintViolation, string(t))
	}
	return nil
}

// ElementType is the closed set of element interaction types.
type ElementType string

const (
	ElementDate        ElementType = "DATE"
	ElementEntry       ElementType = "ENTRY"
	ElementSelect      ElementType = "SELECT"
	ElementMultiSelect ElementType = "MULTI_SELECT"
	ElementRadio       ElementType = "RADIO"
	ElementPicture     ElementType = "PICTURE"
	ElementPlugin      ElementType = "PLUGIN"
	ElementEntryPlugin ElementType = "ENTRY_PLUGIN"
)

// ElementTypes lists every element type in declaration order.
var ElementTypes = []ElementType{
	ElementDate, ElementEntry, ElementSelect, ElementMultiSelect,
	ElementRadio, ElementPicture, ElementPlugin, ElementEntryPlugin,
}

// ParseElementType rejects anything outside ElementTypes, including "".
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t ElementType) Validate() error {
	for _, known := range ElementTypes {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid element type %q", common.ErrConstraintViolation, string(t))
}

// HasChoices is true for the types that are expected to carry a choice list.
func (t ElementType) HasChoices() bool {
	return t == ElementSelect || t == ElementMultiSelect || t == ElementRadio
}

func (t ElementType) IsPlugin() bool {
	return t == ElementPlugin || t == ElementEntryPlugin
}
