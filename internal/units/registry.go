// Package units holds the conversion tables for each measurement family.
//
// Symbols are matched exactly against what a session stores, so these tables
// define the persisted format: a document using a symbol not listed here loads
// fine but its row fails validation. The "(weight)" and "(US fluid)" suffixed
// symbols of older documents are intentionally not accepted.
package units

import (
	"fmt"

	"github.com/unitcost/backend/internal/domain"
)

type table struct {
	base   string
	inputs []domain.Unit
	output []domain.OutputUnit
}

var tables = map[domain.MeasurementFamily]table{
	domain.FamilyDry: {
		base: "g",
		inputs: []domain.Unit{
			{Symbol: "g", FactorToBase: 1.0},
			{Symbol: "oz", FactorToBase: 28.3495},
			{Symbol: "lb", FactorToBase: 453.592},
			{Symbol: "kg", FactorToBase: 1000.0},
		},
		output: []domain.OutputUnit{
			{Symbol: "per g", FactorFromBase: 1.0, Precision: 5},
			{Symbol: "per oz", FactorFromBase: 28.3495, Precision: 4},
		},
	},
	domain.FamilyLiquid: {
		base: "ml",
		inputs: []domain.Unit{
			{Symbol: "ml", FactorToBase: 1.0},
			{Symbol: "fl oz", FactorToBase: 29.5735},
			{Symbol: "L", FactorToBase: 1000.0},
			{Symbol: "cup", FactorToBase: 236.588},
			{Symbol: "pint", FactorToBase: 473.176},
			{Symbol: "quart", FactorToBase: 946.353},
			{Symbol: "gallon", FactorToBase: 3785.41},
		},
		output: []domain.OutputUnit{
			{Symbol: "per ml", FactorFromBase: 1.0, Precision: 5},
			{Symbol: "per fl oz", FactorFromBase: 29.5735, Precision: 4},
			{Symbol: "per L", FactorFromBase: 1000.0, Precision: 2},
		},
	},
}

func lookupTable(f domain.MeasurementFamily) table {
	t, ok := tables[f]
	if !ok {
		panic(fmt.Sprintf("units: no table for family %s", f))
	}
	return t
}

// Units returns the input units of a family in picker order
func Units(f domain.MeasurementFamily) []domain.Unit {
	return append([]domain.Unit(nil), lookupTable(f).inputs...)
}

// OutputUnits returns the display units of a family in column order
func OutputUnits(f domain.MeasurementFamily) []domain.OutputUnit {
	return append([]domain.OutputUnit(nil), lookupTable(f).output...)
}

// Symbols returns only the input unit symbols of a family
func Symbols(f domain.MeasurementFamily) []string {
	inputs := lookupTable(f).inputs
	symbols := make([]string, len(inputs))
	for i, u := range inputs {
		symbols[i] = u.Symbol
	}
	return symbols
}

// BaseUnit returns the symbol every conversion in the family routes through
func BaseUnit(f domain.MeasurementFamily) string {
	return lookupTable(f).base
}

// Lookup finds an input unit by its exact symbol
func Lookup(f domain.MeasurementFamily, symbol string) (domain.Unit, bool) {
	for _, u := range lookupTable(f).inputs {
		if u.Symbol == symbol {
			return u, true
		}
	}
	return domain.Unit{}, false
}
