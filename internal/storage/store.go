package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/particles"
)

const (
	metadataFile  = "metadata.json"
	landmarksFile = "landmarks.csv"
	snapshotDir   = "snapshots"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type SessionMetadata struct {
	ID            string             `json:"id"`
	Source        string             `json:"source"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	CaptureWidth  int                `json:"capture_width"`
	CaptureHeight int                `json:"capture_height"`
	Tracker       hand.Options       `json:"tracker"`
	Frames        int                `json:"frames"`
	Duration      float64            `json:"duration"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

// SaveSession writes a recorded stream of tracker results. Only the first
// hand of each result is kept. ID, Timestamp, Frames and Duration are
// filled from the recording.
func (s *Store) SaveSession(meta SessionMetadata, results []hand.Result) (string, error) {
	if meta.Source == "" {
		meta.Source = "session"
	}
	id, dir, err := s.newDir(meta.Source)
	if err != nil {
		return "", err
	}

	meta.ID = id
	meta.Frames = len(results)
	meta.Timestamp = time.Now()
	var origin time.Time
	if len(results) > 0 {
		origin = results[0].At
		meta.Timestamp = origin
		meta.Duration = results[len(results)-1].At.Sub(origin).Seconds()
	}

	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, landmarksFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"t", "hands"}
	for i := 0; i < hand.NumLandmarks; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, res := range results {
		row := []string{
			strconv.FormatFloat(res.At.Sub(origin).Seconds(), 'f', 6, 64),
			strconv.Itoa(len(res.Hands)),
		}
		if lms, ok := res.First(); ok {
			for _, lm := range lms {
				row = append(row,
					strconv.FormatFloat(lm.X, 'f', 6, 64),
					strconv.FormatFloat(lm.Y, 'f', 6, 64),
					strconv.FormatFloat(lm.Z, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) newDir(prefix string) (string, string, error) {
	stamp := time.Now().Unix()
	id := fmt.Sprintf("%s_%d", prefix, stamp)
	for n := 1; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", "", err
			}
			return id, dir, nil
		}
		id = fmt.Sprintf("%s_%d_%d", prefix, stamp, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns every readable session, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta SessionMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		sessions = append(sessions, meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", dynamo.ErrNoSession, id)
		}
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResults rebuilds the recorded tracker results of a session.
func (s *Store) LoadResults(id string) ([]hand.Result, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	return ReadLandmarks(filepath.Join(s.baseDir, id, landmarksFile), meta.Timestamp)
}

// ReadLandmarks parses a landmarks CSV with offsets relative to origin.
// Rows that fail to parse are skipped.
func ReadLandmarks(path string, origin time.Time) ([]hand.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []hand.Result{}, nil
	}

	results := make([]hand.Result, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		res := hand.Result{At: origin.Add(time.Duration(t * float64(time.Second)))}

		// short rows keep their points so replay reports the hand as malformed
		count, _ := strconv.Atoi(record[1])
		if count > 0 {
			lms := make([]hand.Landmark, min((len(record)-2)/3, hand.NumLandmarks))
			for i := range lms {
				base := 2 + 3*i
				lms[i].X, _ = strconv.ParseFloat(record[base], 64)
				lms[i].Y, _ = strconv.ParseFloat(record[base+1], 64)
				lms[i].Z, _ = strconv.ParseFloat(record[base+2], 64)
			}
			res.Hands = [][]hand.Landmark{lms}
		}
		results = append(results, res)
	}
	return results, nil
}

// SaveSnapshot writes particle buffers as CSV under the snapshots directory
// and returns the file path.
func (s *Store) SaveSnapshot(name string, buf particles.Buffers) (string, error) {
	dir := filepath.Join(s.baseDir, snapshotDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.csv", name, time.Now().Unix()))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteBuffers(f, buf); err != nil {
		return "", err
	}
	return path, nil
}
