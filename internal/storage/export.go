package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/handcloud/internal/particles"
)

// WriteBuffers writes one CSV row per particle.
func WriteBuffers(w io.Writer, buf particles.Buffers) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"i", "x", "y", "z", "r", "g", "b", "size"}); err != nil {
		return err
	}

	f := func(v float32) string { return strconv.FormatFloat(float64(v), 'f', 5, 32) }
	for i := 0; i < buf.Len(); i++ {
		j := 3 * i
		row := []string{
			strconv.Itoa(i),
			f(buf.Positions[j]), f(buf.Positions[j+1]), f(buf.Positions[j+2]),
			f(buf.Colors[j]), f(buf.Colors[j+1]), f(buf.Colors[j+2]),
			f(buf.Sizes[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportLandmarksCSV writes a session's derived gesture trace to w.
func (s *Store) ExportLandmarksCSV(id string, w io.Writer) error {
	results, err := s.LoadResults(id)
	if err != nil {
		return err
	}
	tr := NewTrace(results)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "hands", "index_x", "index_y", "grasp_dist", "pinch_dist"}); err != nil {
		return err
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	for i := range tr.Times {
		row := []string{num(tr.Times[i]), strconv.Itoa(tr.Hands[i]), "", "", "", ""}
		if tr.Hands[i] > 0 {
			row[2], row[3] = num(tr.IndexX[i]), num(tr.IndexY[i])
			row[4], row[5] = num(tr.Grasp[i]), num(tr.Pinch[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Metadata SessionMetadata `json:"metadata"`
	Trace    *Trace          `json:"trace"`
}

// ExportJSON writes a session's metadata and gesture trace as indented JSON.
func (s *Store) ExportJSON(id string, w io.Writer) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	results, err := s.LoadResults(id)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Metadata: *meta, Trace: NewTrace(results)})
}
