//Package pitch holds the static tables describing the pitch: where each keypoint
//lies on the tactical map and the class names of both detectors.
package pitch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"
	"strconv"

	"github.com/spf13/viper"

	"github.com/chenBenjamin97/tactical-map/pkg/geometry"
)

//ErrNoNames is returned for a class file without a 'names' entry
var ErrNoNames = errors.New("missing 'names'")

//Table is loaded once at startup and never modified afterwards
type Table struct {
	Positions       map[string]geometry.Point
	KeypointClasses []string
	ObjectClasses   []string
}

//Load reads the keypoints map positions (JSON) and both class name files (YAML)
func Load(positionsPath, keypointClassesPath, objectClassesPath string) (*Table, error) {
	positions, err := LoadPositions(positionsPath)
	if err != nil {
		return nil, err
	}

	keypointClasses, err := LoadClassNames(keypointClassesPath)
	if err != nil {
		return nil, err
	}

	objectClasses, err := LoadClassNames(objectClassesPath)
	if err != nil {
		return nil, err
	}

	return &Table{
		Positions:       positions,
		KeypointClasses: keypointClasses,
		ObjectClasses:   objectClasses,
	}, nil
}

//LoadPositions reads a JSON object of label -> [x, y] tactical map coordinates
func LoadPositions(path string) (map[string]geometry.Point, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPositions: Could not read '%s', got '%v'", path, err)
	}

	raw := make(map[string][2]float64)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("LoadPositions: Could not parse '%s', got '%v'", path, err)
	}

	positions := make(map[string]geometry.Point, len(raw))
	for label, xy := range raw {
		positions[label] = geometry.Pt(xy[0], xy[1])
	}

	return positions, nil
}

//LoadClassNames reads the 'names' entry of a detector dataset file. Both the
//list form and the index -> name mapping form are accepted.
func LoadClassNames(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("LoadClassNames: Could not read '%s', got '%v'", path, err)
	}

	switch names := v.Get("names").(type) {
	case []interface{}:
		res := make([]string, len(names))
		for i, n := range names {
			res[i] = fmt.Sprint(n)
		}
		return res, nil
	case map[string]interface{}:
		return namesFromMap(names)
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(names))
		for k, n := range names {
			converted[fmt.Sprint(k)] = n
		}
		return namesFromMap(converted)
	default:
		return nil, fmt.Errorf("LoadClassNames: '%s': %w", path, ErrNoNames)
	}
}

func namesFromMap(names map[string]interface{}) ([]string, error) {
	indices := make([]int, 0, len(names))
	byIndex := make(map[int]string, len(names))
	for k, n := range names {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("LoadClassNames: invalid class index '%s'", k)
		}
		indices = append(indices, idx)
		byIndex[idx] = fmt.Sprint(n)
	}
	sort.Ints(indices)

	if len(indices) == 0 {
		return []string{}, nil
	}

	res := make([]string, indices[len(indices)-1]+1)
	for i := range res {
		if name, ok := byIndex[i]; ok {
			res[i] = name
		} else {
			res[i] = strconv.Itoa(i)
		}
	}
	return res, nil
}

//KeypointLabel returns the label of a keypoint detector class
func (t *Table) KeypointLabel(class int) (string, bool) {
	if class < 0 || class >= len(t.KeypointClasses) {
		return "", false
	}
	return t.KeypointClasses[class], true
}

//ObjectLabel returns the name of an object detector class, its number when unknown
func (t *Table) ObjectLabel(class int) string {
	if class < 0 || class >= len(t.ObjectClasses) {
		return strconv.Itoa(class)
	}
	return t.ObjectClasses[class]
}

//Observation resolves a detected keypoint into a correspondence. It fails for
//classes without a label or labels without a map position.
func (t *Table) Observation(class int, frame geometry.Point) (geometry.Keypoint, bool) {
	label, ok := t.KeypointLabel(class)
	if !ok {
		return geometry.Keypoint{}, false
	}

	plane, ok := t.Positions[label]
	if !ok {
		return geometry.Keypoint{}, false
	}

	return geometry.Keypoint{Label: label, Frame: frame, Plane: plane}, true
}
