package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/freefall/internal/dynamo"
)

// Columns is the CSV header, one column per Kinematics field.
var Columns = []string{
	"time", "position", "velocity", "acceleration",
	"net_force", "gravity_force", "friction_force", "archimedes_thrust",
	"kinetic_energy", "potential_energy", "total_energy",
}

func fields(p dynamo.HistoryPoint) []float64 {
	return []float64{
		p.Time, p.Position, p.Velocity, p.Acceleration,
		p.NetForce, p.GravityForce, p.FrictionForce, p.ArchimedesThrust,
		p.KineticEnergy, p.PotentialEnergy, p.TotalEnergy,
	}
}

func fromFields(v []float64) dynamo.HistoryPoint {
	return dynamo.HistoryPoint{
		Time: v[0], Position: v[1], Velocity: v[2], Acceleration: v[3],
		NetForce: v[4], GravityForce: v[5], FrictionForce: v[6], ArchimedesThrust: v[7],
		KineticEnergy: v[8], PotentialEnergy: v[9], TotalEnergy: v[10],
	}
}

// WriteCSV writes h with a header row. Values keep full precision.
func WriteCSV(w io.Writer, h []dynamo.HistoryPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	row := make([]string, len(Columns))
	for _, p := range h {
		for i, v := range fields(p) {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) ([]dynamo.HistoryPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.HistoryPoint{}, nil
	}

	h := make([]dynamo.HistoryPoint, 0, len(records)-1)
	vals := make([]float64, len(Columns))
	for i, record := range records[1:] {
		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, %s: %w", i+1, Columns[j], err)
			}
			vals[j] = v
		}
		h = append(h, fromFields(vals))
	}
	return h, nil
}

func ExportCSV(path string, h []dynamo.HistoryPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, h); err != nil {
		return err
	}
	return file.Close()
}

// ExportData is the JSON document describing one run.
type ExportData struct {
	Params     dynamo.Params         `json:"params"`
	Integrator string                `json:"integrator"`
	Dt         float64               `json:"dt"`
	Steps      int                   `json:"steps"`
	Terminated bool                  `json:"terminated"`
	Final      dynamo.Kinematics     `json:"final"`
	Metrics    map[string]float64    `json:"metrics"`
	History    []dynamo.HistoryPoint `json:"history"`
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, data); err != nil {
		return err
	}
	return file.Close()
}
