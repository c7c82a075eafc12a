package corpus

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"trmcore/domain/trm"
)

// operatorFile is the on-disk encoding of one Operator's factor B plus the
// provenance metadata a corpus-learned operator carries: how many
// exemplars trained it, which archive it came from, and when.
type operatorFile struct {
	Axis       string
	Rank       int
	Rows, Cols int
	Data       []float64
	CorpusSize int
	ArchiveTag string
	LearnedAt  time.Time
}

// SavePack writes one <root>/<packName>/<axis>.bin file per operator.
// corpusSize and archiveTag are recorded with every operator; pass 0/""
// for packs with no corpus provenance (e.g. random construction).
func SavePack(root string, pack *trm.Pack, corpusSize int, archiveTag string) error {
	dir := filepath.Join(root, pack.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating pack directory %q: %w", dir, err)
	}
	for _, op := range pack.Operators {
		if err := saveOperator(dir, pack.Rank, op, corpusSize, archiveTag); err != nil {
			return fmt.Errorf("saving operator %q: %w", op.Name, err)
		}
	}
	return nil
}

func saveOperator(dir string, rank int, op *trm.Operator, corpusSize int, archiveTag string) error {
	path := filepath.Join(dir, op.Name+".bin")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, cols := op.B.Dims()
	payload := operatorFile{
		Axis: op.Name, Rank: rank, Rows: rows, Cols: cols, Data: op.B.RawMatrix().Data,
		CorpusSize: corpusSize, ArchiveTag: archiveTag, LearnedAt: time.Now(),
	}
	return gob.NewEncoder(f).Encode(payload)
}

// LoadPack reads one operator per axis in axisNames from
// <root>/<packName>/<axis>.bin, assembles a Pack, and re-verifies
// Sum(E_i) = I within tolerance, rescaling if truncation in the persisted
// factors has introduced drift.
func LoadPack(root, packName, description string, rank int, axisNames []string) (*trm.Pack, error) {
	dir := filepath.Join(root, packName)
	ops := make([]*trm.Operator, 0, len(axisNames))
	for _, axis := range axisNames {
		op, _, err := loadOperator(dir, axis, rank)
		if err != nil {
			return nil, fmt.Errorf("loading operator %q: %w", axis, err)
		}
		ops = append(ops, op)
	}
	pack := &trm.Pack{Name: packName, Description: description, Rank: rank, Operators: ops}
	if err := pack.Renormalize(); err != nil {
		return nil, fmt.Errorf("reloading pack %q: %w", packName, err)
	}
	return pack, nil
}

func loadOperator(dir, axis string, rank int) (*trm.Operator, operatorFile, error) {
	path := filepath.Join(dir, axis+".bin")
	f, err := os.Open(path)
	if err != nil {
		return nil, operatorFile{}, err
	}
	defer f.Close()

	var payload operatorFile
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		return nil, operatorFile{}, fmt.Errorf("decoding %q: %w", path, err)
	}
	if payload.Rows != rank || payload.Cols != rank {
		return nil, operatorFile{}, fmt.Errorf("%w: operator %q is %dx%d, expected %dx%d",
			trm.ErrDimensionMismatch, axis, payload.Rows, payload.Cols, rank, rank)
	}
	b := mat.NewDense(payload.Rows, payload.Cols, payload.Data)
	return &trm.Operator{Name: axis, B: b}, payload, nil
}

// corpusFile is the on-disk exemplar format: {"examples": [{"text": "..."},
// ...]}. Arbitrary additional keys in either the file or each example
// object are ignored.
type corpusFile struct {
	Examples []struct {
		Text string `json:"text"`
	} `json:"examples"`
}

// LoadCorpus reads <root>/<packName>/<axis>.json, the hand-authored or
// curated exemplar set that trains one axis's operator.
func LoadCorpus(root, packName, axis string) ([]string, error) {
	path := filepath.Join(root, packName, axis+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %q: %w", path, err)
	}
	var parsed corpusFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing corpus file %q: %w", path, err)
	}
	if len(parsed.Examples) == 0 {
		return nil, fmt.Errorf("%w: corpus file %q has no exemplars", trm.ErrInvalidInput, path)
	}
	exemplars := make([]string, len(parsed.Examples))
	for i, ex := range parsed.Examples {
		exemplars[i] = ex.Text
	}
	return exemplars, nil
}

// LoadCorpusSet reads every axis file named in axisNames under
// <root>/<packName>/ and returns the map LearnPack expects.
func LoadCorpusSet(root, packName string, axisNames []string) (map[string][]string, error) {
	out := make(map[string][]string, len(axisNames))
	for _, axis := range axisNames {
		exemplars, err := LoadCorpus(root, packName, axis)
		if err != nil {
			return nil, err
		}
		out[axis] = exemplars
	}
	return out, nil
}
