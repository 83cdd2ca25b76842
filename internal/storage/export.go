package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run         RunMetadata `json:"run"`
	Times       []float64   `json:"times"`
	Dts         []float64   `json:"dts"`
	Kinetic     []float64   `json:"kinetic"`
	Potential   []float64   `json:"potential"`
	Total       []float64   `json:"total"`
	MaxPressure []float64   `json:"max_pressure"`
}

// ExportJSON writes a run and its energy log as one indented JSON
// document. Potential is everything except kinetic energy.
func ExportJSON(w io.Writer, meta RunMetadata, s Series) error {
	data := ExportData{
		Run:         meta,
		Times:       s.Times,
		Dts:         s.Dts,
		Kinetic:     make([]float64, len(s.Energies)),
		Potential:   make([]float64, len(s.Energies)),
		Total:       s.Totals(),
		MaxPressure: s.MaxPressure,
	}
	for i, e := range s.Energies {
		data.Kinetic[i] = e.Kinetic
		data.Potential[i] = e.Total() - e.Kinetic
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
