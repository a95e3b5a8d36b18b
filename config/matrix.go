package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const openCVMatrixType = "opencv-matrix"

// openCVMatrix is how OpenCV's FileStorage writes a cv::Mat or cv::Matx to JSON.
type openCVMatrix struct {
	TypeID string    `json:"type_id"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Dt     string    `json:"dt"`
	Data   []float64 `json:"data"`
}

func weakDecode(input, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// decodeMatrix reads a rows x cols matrix in row-major order. raw is either an
// opencv-matrix object, a flat array or an array of rows.
func decodeMatrix(raw interface{}, rows, cols int) ([]float64, error) {
	data, gotRows, gotCols, err := decodeDense(raw)
	if err != nil {
		return nil, err
	}
	if gotRows == 0 {
		if len(data) != rows*cols {
			return nil, errors.Errorf("expected %d values for a %dx%d matrix, got %d", rows*cols, rows, cols, len(data))
		}
		return data, nil
	}
	if gotRows != rows || gotCols != cols {
		return nil, errors.Errorf("expected a %dx%d matrix, got %dx%d", rows, cols, gotRows, gotCols)
	}
	return data, nil
}

// decodeVector reads a vector of any length from an opencv-matrix with a single row or
// column, or from a flat array.
func decodeVector(raw interface{}) ([]float64, error) {
	data, rows, cols, err := decodeDense(raw)
	if err != nil {
		return nil, err
	}
	if rows > 1 && cols > 1 {
		return nil, errors.Errorf("expected a vector, got a %dx%d matrix", rows, cols)
	}
	return data, nil
}

// decodeDense returns the values of raw in row-major order with its shape. The shape is
// 0x0 for a flat array.
func decodeDense(raw interface{}) ([]float64, int, int, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		var m openCVMatrix
		if err := weakDecode(v, &m); err != nil {
			return nil, 0, 0, errors.Wrap(err, "malformed matrix")
		}
		if m.TypeID != "" && m.TypeID != openCVMatrixType {
			return nil, 0, 0, errors.Errorf("unsupported matrix type %q", m.TypeID)
		}
		if len(m.Data) != m.Rows*m.Cols {
			return nil, 0, 0, errors.Errorf("matrix declares %dx%d but holds %d values", m.Rows, m.Cols, len(m.Data))
		}
		return m.Data, m.Rows, m.Cols, nil
	case []interface{}:
		if len(v) > 0 {
			if _, nested := v[0].([]interface{}); nested {
				var rows [][]float64
				if err := weakDecode(v, &rows); err != nil {
					return nil, 0, 0, errors.Wrap(err, "malformed matrix rows")
				}
				cols := len(rows[0])
				for i, row := range rows {
					if len(row) != cols {
						return nil, 0, 0, errors.Errorf("row %d has %d values, expected %d", i, len(row), cols)
					}
				}
				return lo.Flatten(rows), len(rows), cols, nil
			}
		}
		var flat []float64
		if err := weakDecode(v, &flat); err != nil {
			return nil, 0, 0, errors.Wrap(err, "malformed array")
		}
		return flat, 0, 0, nil
	default:
		return nil, 0, 0, errors.Errorf("expected a matrix or array, got %T", raw)
	}
}
